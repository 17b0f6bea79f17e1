package core

import "fmt"

// Grid stores the 2D lattice of cells in a single row-major slice together
// with the orientation table the cells index into. Dimensions are fixed for
// the lifetime of a Grid; a reload replaces the whole value.
type Grid struct {
	Width        int
	Height       int
	Cells        []Cell
	Orientations []Orientation
}

// NewGrid allocates a grid of Tissue cells at state 0, all pointing at
// orientation 0. At least one orientation must be supplied.
func NewGrid(w, h int, orientations []Orientation) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", w, h)
	}
	if len(orientations) == 0 {
		return nil, fmt.Errorf("grid needs at least one orientation")
	}
	g := &Grid{
		Width:        w,
		Height:       h,
		Cells:        make([]Cell, w*h),
		Orientations: append([]Orientation(nil), orientations...),
	}
	for i := range g.Cells {
		g.Cells[i].Type = Tissue
	}
	g.RebuildOrientationCounts()
	return g, nil
}

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.Width + x }

// At returns a pointer to the cell at (x, y). Coordinates must be in bounds.
func (g *Grid) At(x, y int) *Cell { return &g.Cells[y*g.Width+x] }

// InBounds reports whether (x, y) lies on the lattice.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// NumOrientations returns the size of the orientation table.
func (g *Grid) NumOrientations() int { return len(g.Orientations) }

// Validate checks the structural invariants: matching slice sizes and every
// cell's orientation index within range.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", g.Width, g.Height)
	}
	if len(g.Cells) != g.Width*g.Height {
		return fmt.Errorf("cell slice length %d does not match %dx%d", len(g.Cells), g.Width, g.Height)
	}
	n := uint32(len(g.Orientations))
	if n == 0 {
		return fmt.Errorf("grid needs at least one orientation")
	}
	for i := range g.Cells {
		if g.Cells[i].OrientationIndex >= n {
			return fmt.Errorf("cell %d references orientation %d of %d", i, g.Cells[i].OrientationIndex, n)
		}
	}
	return nil
}

// RebuildOrientationCounts recomputes every orientation's CellCount by
// scanning the cells. The counts are bookkeeping carried in the on-disk
// format; the engine core never reads them.
func (g *Grid) RebuildOrientationCounts() {
	for i := range g.Orientations {
		g.Orientations[i].CellCount = 0
	}
	for i := range g.Cells {
		g.Orientations[g.Cells[i].OrientationIndex].CellCount++
	}
}

// SetOrientation repoints the cell at (x, y) to the given orientation and
// keeps the per-orientation counts in step.
func (g *Grid) SetOrientation(x, y int, idx uint32) error {
	if int(idx) >= len(g.Orientations) {
		return fmt.Errorf("orientation %d out of range (%d orientations)", idx, len(g.Orientations))
	}
	c := g.At(x, y)
	if c.OrientationIndex == idx {
		return nil
	}
	g.Orientations[c.OrientationIndex].CellCount--
	g.Orientations[idx].CellCount++
	c.OrientationIndex = idx
	return nil
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{
		Width:        g.Width,
		Height:       g.Height,
		Cells:        append([]Cell(nil), g.Cells...),
		Orientations: append([]Orientation(nil), g.Orientations...),
	}
}
