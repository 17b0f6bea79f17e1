// Package engine orchestrates the simulation: one mutex over the grid and
// excitation field, a tick made of the convolution pass plus the striped
// update pass, and the control surface the UI dispatches into.
package engine

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"heart-ca/internal/codec"
	"heart-ca/internal/core"
	"heart-ca/internal/neighbour"
	"heart-ca/internal/stats"
	"heart-ca/internal/update"
)

// EditOp selects what an edit does to the cells it touches.
type EditOp int

const (
	// Excite starts an action potential on non-refractory cells.
	Excite EditOp = iota
	// Quench clears the state of non-refractory cells.
	Quench
	// ToggleResting flips tissue between excitable and refractory.
	ToggleResting
)

const pausePollInterval = 250 * time.Millisecond

// Engine owns the grid, the shared excitation field, and the neighbour
// counter. All access to the shared state goes through its mutex: ticks,
// UI edits, save, load, and render snapshots alike.
type Engine struct {
	mu      sync.Mutex
	grid    *core.Grid
	state   []float64
	counter *neighbour.Counter

	cfg   core.Config
	ticks uint64

	collector *stats.Collector

	paused atomic.Bool
	step   atomic.Bool
	quit   atomic.Bool

	verbose bool
}

// New builds an engine around the grid. Preconditions (dimensions, radius
// against grid size) fail here; a running engine has no per-tick errors.
func New(g *core.Grid, cfg core.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g.Width != cfg.Width || g.Height != cfg.Height {
		return nil, fmt.Errorf("grid is %dx%d but config says %dx%d", g.Width, g.Height, cfg.Width, cfg.Height)
	}
	e := &Engine{
		grid:  g,
		state: make([]float64, g.Width*g.Height),
		cfg:   cfg,
	}
	e.rebuildState()
	counter, err := neighbour.NewCounter(g, e.state, cfg.Params.SearchRadius)
	if err != nil {
		return nil, err
	}
	e.counter = counter
	return e, nil
}

// rebuildState derives the excitation field from the cells: emitting cells
// contribute their state, refractory cells contribute nothing. Called under
// the lock (or before the engine is shared).
func (e *Engine) rebuildState() {
	for i := range e.grid.Cells {
		if e.grid.Cells[i].Type.Emits() {
			e.state[i] = float64(e.grid.Cells[i].State)
		} else {
			e.state[i] = 0
		}
	}
}

// SetVerbose enables the per-tick timing log line.
func (e *Engine) SetVerbose(v bool) { e.verbose = v }

// SetCollector attaches an activity collector sampled after every tick.
func (e *Engine) SetCollector(c *stats.Collector) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.collector = c
}

// Tick advances the simulation one step, blocking until done. The
// neighbour pass completes before any update stripe starts, and all
// stripes join before the lock is released.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked()
}

func (e *Engine) tickLocked() {
	start := time.Now()
	e.counter.Calculate()
	update.Run(e.grid, e.counter.Table(), e.state, e.cfg.Params, e.cfg.Workers)
	e.ticks++
	if e.collector != nil {
		e.collector.Record(e.ticks, e.grid)
	}
	if e.verbose {
		log.Printf("tick %d took %s", e.ticks, time.Since(start))
	}
}

// Ticks returns how many steps have run.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Run is the simulation role's loop: tick, sleep out the configured frame
// time, poll the paused flag, exit on Quit. Meant to run on its own
// goroutine; the caller regains control through the flag setters.
func (e *Engine) Run() {
	frame := time.Duration(e.cfg.FrameTimeMS) * time.Millisecond
	for !e.quit.Load() {
		if e.paused.Load() && !e.step.CompareAndSwap(true, false) {
			time.Sleep(pausePollInterval)
			continue
		}
		start := time.Now()
		e.Tick()
		if remain := frame - time.Since(start); remain > 0 {
			time.Sleep(remain)
		}
	}
}

// Pause suspends the run loop after the current tick.
func (e *Engine) Pause() { e.paused.Store(true) }

// Resume lets the run loop tick again.
func (e *Engine) Resume() { e.paused.Store(false) }

// TogglePause flips the paused flag and reports the new value.
func (e *Engine) TogglePause() bool {
	for {
		old := e.paused.Load()
		if e.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether the run loop is suspended.
func (e *Engine) Paused() bool { return e.paused.Load() }

// Step requests one extra tick while paused.
func (e *Engine) Step() { e.step.Store(true) }

// Quit makes the run loop exit; the host joins the goroutine afterwards.
func (e *Engine) Quit() { e.quit.Store(true) }

// EditCell applies op to the cell at (x, y). Out-of-range coordinates are
// rejected here; the update path itself never checks.
func (e *Engine) EditCell(x, y int, op EditOp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.grid.InBounds(x, y) {
		return
	}
	e.applyOp(e.grid.Index(x, y), op)
}

// EditRect applies op to every cell in the axis-aligned rectangle spanned
// by the two corners, inclusive, clamped to the grid.
func (e *Engine) EditRect(x0, y0, x1, y1 int, op EditOp) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	x0 = clamp(x0, 0, e.grid.Width-1)
	x1 = clamp(x1, 0, e.grid.Width-1)
	y0 = clamp(y0, 0, e.grid.Height-1)
	y1 = clamp(y1, 0, e.grid.Height-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			e.applyOp(e.grid.Index(x, y), op)
		}
	}
}

func (e *Engine) applyOp(idx int, op EditOp) {
	c := &e.grid.Cells[idx]
	switch op {
	case Excite:
		if c.Type == core.RestingTissue {
			return
		}
		c.State = e.cfg.Params.APDuration
		e.state[idx] = float64(c.State)
	case Quench:
		if c.Type == core.RestingTissue {
			return
		}
		c.State = 0
		e.state[idx] = 0
	case ToggleResting:
		switch c.Type {
		case core.Tissue:
			c.Type = core.RestingTissue
			e.state[idx] = 0
		case core.RestingTissue:
			c.Type = core.Tissue
			e.state[idx] = float64(c.State)
		}
	}
}

// ShockAll starts an action potential on every non-refractory cell. The
// excitation a shocked cell radiates is gated on its first decrement, the
// same as a normally fired cell, so the field entry stays zero.
func (e *Engine) ShockAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.grid.Cells {
		c := &e.grid.Cells[i]
		if c.Type == core.RestingTissue {
			continue
		}
		c.State = e.cfg.Params.APDuration
		e.state[i] = 0
	}
}

// SeedPacemakerPatch converts a square patch centred on (cx, cy) into
// pacemaker cells at state 0, clamped to the grid. Meant to be called
// before the first tick.
func (e *Engine) SeedPacemakerPatch(cx, cy, radius int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if !e.grid.InBounds(x, y) {
				continue
			}
			idx := e.grid.Index(x, y)
			e.grid.Cells[idx].Type = core.Pacemaker
			e.grid.Cells[idx].State = 0
			e.state[idx] = 0
		}
	}
}

// SeedFibrosis scatters refractory patches over the lattice: each cell
// independently becomes RestingTissue at full rest duration with the given
// probability. Deterministic for a fixed seed.
func (e *Engine) SeedFibrosis(fraction float64, seed int64) {
	if fraction <= 0 {
		return
	}
	rng := core.NewRNG(seed)
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.grid.Cells {
		if e.grid.Cells[i].Type != core.Tissue {
			continue
		}
		if rng.Float64() < fraction {
			e.grid.Cells[i].Type = core.RestingTissue
			e.grid.Cells[i].State = e.cfg.Params.RestDuration
			e.state[i] = 0
		}
	}
}

// Save serializes the grid to path under the lock.
func (e *Engine) Save(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return codec.SaveFile(e.grid, path)
}

// Load replaces the grid from a dump and reinitialises the neighbour
// counter. On any error the old grid is retained untouched. Dimensions and
// orientation count may differ from the current grid.
func (e *Engine) Load(path string) error {
	g, err := codec.LoadFile(path)
	if err != nil {
		return err
	}
	r := e.cfg.Params.SearchRadius
	if r > g.Width || r > g.Height {
		return fmt.Errorf("loaded grid %dx%d is smaller than search radius %d", g.Width, g.Height, r)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	state := e.state
	if len(state) != g.Width*g.Height {
		state = make([]float64, g.Width*g.Height)
	}
	prevGrid, prevState := e.grid, e.state
	e.grid = g
	e.state = state
	e.rebuildState()
	if err := e.counter.Reinitialize(g, state); err != nil {
		e.grid = prevGrid
		e.state = prevState
		return err
	}
	e.cfg.Width = g.Width
	e.cfg.Height = g.Height
	return nil
}

// Size returns the grid dimensions.
func (e *Engine) Size() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Width, e.grid.Height
}

// CopyCells snapshots the cells for rendering. The returned slice is the
// (possibly reallocated) dst; the snapshot is from a consistent state
// between ticks.
func (e *Engine) CopyCells(dst []core.Cell) ([]core.Cell, int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(dst) != len(e.grid.Cells) {
		dst = make([]core.Cell, len(e.grid.Cells))
	}
	copy(dst, e.grid.Cells)
	return dst, e.grid.Width, e.grid.Height
}

// StatusAt formats the status line for the cell at (x, y).
func (e *Engine) StatusAt(x, y int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.grid.InBounds(x, y) {
		return ""
	}
	c := e.grid.At(x, y)
	return fmt.Sprintf("Cell type: %s  Cell state: %d", c.Type, c.State)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
