// Package neighbour computes per-cell weighted neighbour excitation as a
// bank of FFT-based cyclic convolutions, one per anisotropy orientation.
package neighbour

import (
	"fmt"

	"heart-ca/internal/core"
	"heart-ca/internal/fft"
	"heart-ca/internal/kern"
)

// Counter owns the padded kernels, their precomputed spectra, and the
// per-orientation scratch for one grid. The stateArray is shared with the
// engine: the update kernel writes each tick's emissions into it and the
// next Calculate reads them back out.
type Counter struct {
	grid   *core.Grid
	state  []float64
	radius int

	plan            *fft.Plan
	numOrientations int

	kernels    [][]float64    // raw radius×radius coefficients
	padded     [][]float64    // kernels cyclically shifted into W×H
	kernelSpec [][]complex128 // kernel transforms, computed once per (re)init
	stateSpec  [][]complex128 // per-orientation stateArray transform scratch
	perOrient  [][]float64    // inverse transform output per orientation

	table []float64 // interleaved [cell*numOrientations + o]
}

// NewCounter builds a counter for the grid, sharing the engine's
// stateArray. Dimension preconditions are checked here; there is no
// per-tick failure mode.
func NewCounter(g *core.Grid, state []float64, radius int) (*Counter, error) {
	if err := checkPreconditions(g, state, radius); err != nil {
		return nil, err
	}
	plan, err := fft.NewPlan(g.Width, g.Height)
	if err != nil {
		return nil, err
	}
	c := &Counter{
		grid:   g,
		state:  state,
		radius: radius,
		plan:   plan,
	}
	c.alloc()
	c.initKernels()
	return c, nil
}

func checkPreconditions(g *core.Grid, state []float64, radius int) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if len(state) != g.Width*g.Height {
		return fmt.Errorf("state array length %d does not match %dx%d", len(state), g.Width, g.Height)
	}
	if radius < 2 || radius%2 != 0 {
		return fmt.Errorf("search radius must be even and at least 2, got %d", radius)
	}
	if radius > g.Width || radius > g.Height {
		return fmt.Errorf("search radius %d exceeds grid dimensions %dx%d", radius, g.Width, g.Height)
	}
	return nil
}

// alloc (re)creates every per-orientation buffer for the current grid.
func (c *Counter) alloc() {
	g := c.grid
	n := g.NumOrientations()
	total := g.Width * g.Height
	specLen := c.plan.SpectrumLen()

	c.numOrientations = n
	c.kernels = make([][]float64, n)
	c.padded = make([][]float64, n)
	c.kernelSpec = make([][]complex128, n)
	c.stateSpec = make([][]complex128, n)
	c.perOrient = make([][]float64, n)
	for i := 0; i < n; i++ {
		c.kernels[i] = make([]float64, c.radius*c.radius)
		c.padded[i] = make([]float64, total)
		c.kernelSpec[i] = make([]complex128, specLen)
		c.stateSpec[i] = make([]complex128, specLen)
		c.perOrient[i] = make([]float64, total)
	}
	c.table = make([]float64, total*n)
}

// initKernels rebuilds every orientation kernel, shifts it into the padded
// buffer, and transforms it. The kernel spectra are then reused for the
// lifetime of the counter.
func (c *Counter) initKernels() {
	g := c.grid
	for i := range g.Orientations {
		k := kern.Build(g.Orientations[i], c.radius)
		copy(c.kernels[i], k)
		kern.ShiftInto(c.kernels[i], c.radius, c.padded[i], g.Width, g.Height)
		c.plan.Forward(c.padded[i], c.kernelSpec[i])
	}
}

// Reinitialize rebinds the counter after a grid reload. When dimensions
// changed the FFT plan is rebuilt; when the orientation count changed every
// per-orientation buffer is reallocated. Kernels are always recomputed from
// the current orientation table.
func (c *Counter) Reinitialize(g *core.Grid, state []float64) error {
	if err := checkPreconditions(g, state, c.radius); err != nil {
		return err
	}
	dimsChanged := g.Width != c.grid.Width || g.Height != c.grid.Height
	if dimsChanged {
		plan, err := fft.NewPlan(g.Width, g.Height)
		if err != nil {
			return err
		}
		c.plan = plan
	}
	c.grid = g
	c.state = state
	if dimsChanged || g.NumOrientations() != c.numOrientations {
		c.alloc()
	}
	c.initKernels()
	return nil
}

// Calculate runs one convolution per orientation against the shared
// stateArray and gathers the results into the interleaved neighbour table.
func (c *Counter) Calculate() {
	g := c.grid
	total := g.Width * g.Height
	inv := 1.0 / float64(total)
	for o := 0; o < c.numOrientations; o++ {
		c.plan.Forward(c.state, c.stateSpec[o])
		multiplySpectra(c.stateSpec[o], c.kernelSpec[o], inv)
		c.plan.Inverse(c.stateSpec[o], c.perOrient[o])
	}
	for i := 0; i < total; i++ {
		for o := 0; o < c.numOrientations; o++ {
			c.table[i*c.numOrientations+o] = c.perOrient[o][i]
		}
	}
}

// Table returns the interleaved neighbour table filled by Calculate.
func (c *Counter) Table() []float64 { return c.table }

// PerOrientation exposes one orientation's raw convolution output.
func (c *Counter) PerOrientation(o int) []float64 { return c.perOrient[o] }

// NumOrientations returns the orientation count the buffers are sized for.
func (c *Counter) NumOrientations() int { return c.numOrientations }
