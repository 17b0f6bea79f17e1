// Package update applies the per-cell transition rule over the grid in
// parallel stripes, consuming the interleaved neighbour table and writing
// the next tick's excitation field.
package update

import (
	"math"
	"sync"

	"heart-ca/internal/core"
)

// Run advances every cell by one tick. The grid is split into workers
// row-major stripes updated concurrently; the last stripe absorbs the
// remainder. The transition reads only the neighbour table and each cell's
// own state, so stripes share nothing but their disjoint output ranges.
func Run(g *core.Grid, table []float64, state []float64, p core.Params, workers int) {
	total := len(g.Cells)
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}
	n := g.NumOrientations()
	delta := total / workers

	var wg sync.WaitGroup
	for t := 0; t < workers; t++ {
		start := t * delta
		end := start + delta
		if t == workers-1 {
			end = total
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			updateSpan(g.Cells, table, state, n, p, start, end)
		}(start, end)
	}
	wg.Wait()
}

// updateSpan is the vector-shaped path: branch-free mask arithmetic,
// eight cells per loop iteration, with updateSpanScalar covering the tail.
func updateSpan(cells []core.Cell, table, state []float64, numOrientations int, p core.Params, start, end int) {
	blocked := start + (end-start)&^7
	for i := start; i < blocked; i += 8 {
		for j := i; j < i+8; j++ {
			updateMasked(&cells[j], table, state, numOrientations, p, j)
		}
	}
	updateSpanScalar(cells, table, state, numOrientations, p, blocked, end)
}

// updateMasked applies the transition with mask arithmetic: every
// comparison becomes an all-ones/all-zeros int32 and the new state is
// assembled by masked adds, so the whole rule runs without branches.
func updateMasked(c *core.Cell, table, state []float64, numOrientations int, p core.Params, idx int) {
	neigh := table[idx*numOrientations+int(c.OrientationIndex)]
	// Narrow to single precision before the strict threshold compare.
	above := gtMask(float32(neigh), float32(p.APThreshold))

	st := int32(c.State)
	typ := int32(c.Type)
	isPace := eqMask(typ, int32(core.Pacemaker))
	isTissue := eqMask(typ, int32(core.Tissue))
	isResting := eqMask(typ, int32(core.RestingTissue))
	wasActive := ^eqMask(st, 0)

	st -= wasActive & 1
	isZero := eqMask(st, 0)

	// Pacemaker at zero restarts its action potential.
	st += int32(p.APDuration) & (isZero & isPace)
	// Resting tissue that finished refractory becomes excitable tissue.
	typ += (int32(core.Tissue) - int32(core.RestingTissue)) & (isZero & isResting)
	// Tissue whose action potential just ran out goes refractory.
	toRest := isZero & wasActive & isTissue
	st += int32(p.RestDuration) & toRest
	typ += (int32(core.RestingTissue) - int32(core.Tissue)) & toRest
	// Tissue that was already at zero fires when above threshold. Cells
	// that reached zero by this tick's decrement, and cells that only just
	// left refractory, wait for the next tick.
	fire := above & ^wasActive & isTissue & isZero
	st += int32(p.APDuration) & fire

	// Only pacemakers and tissue radiate excitation into the next tick.
	emits := isPace | (isTissue & ^toRest)

	c.State = uint32(st)
	c.Type = core.CellType(typ)
	state[idx] = float64(st & emits)
}

// updateSpanScalar is the plain fallback rule. It must agree with the
// masked path bit for bit, including the single-precision narrowing.
func updateSpanScalar(cells []core.Cell, table, state []float64, numOrientations int, p core.Params, start, end int) {
	for i := start; i < end; i++ {
		c := &cells[i]
		neigh := table[i*numOrientations+int(c.OrientationIndex)]
		above := float32(neigh) > float32(p.APThreshold)
		wasActive := c.State != 0

		st := c.State
		if wasActive {
			st--
		}
		switch c.Type {
		case core.Pacemaker:
			if st == 0 {
				st = p.APDuration
			}
		case core.RestingTissue:
			if st == 0 {
				c.Type = core.Tissue
			}
		case core.Tissue:
			if st == 0 && wasActive {
				c.Type = core.RestingTissue
				st = p.RestDuration
			} else if st == 0 && above {
				st = p.APDuration
			}
		}
		c.State = st
		if c.Type.Emits() {
			state[i] = float64(st)
		} else {
			state[i] = 0
		}
	}
}

// eqMask returns -1 when a == b and 0 otherwise.
func eqMask(a, b int32) int32 {
	x := uint32(a ^ b)
	return int32((x|(-x))>>31) - 1
}

// gtMask returns -1 when a > b and 0 otherwise, via the sign of b-a.
// Equal operands subtract to +0, so ties are below threshold.
func gtMask(a, b float32) int32 {
	return -int32(math.Float32bits(b-a) >> 31)
}
