package update

import (
	"math/rand/v2"
	"testing"

	"heart-ca/internal/core"
)

func testParams() core.Params {
	return core.Params{APDuration: 8, RestDuration: 4, APThreshold: 16, SearchRadius: 8}
}

func flatTable(values []float64, numOrientations int) []float64 {
	table := make([]float64, len(values)*numOrientations)
	for i, v := range values {
		for o := 0; o < numOrientations; o++ {
			table[i*numOrientations+o] = v
		}
	}
	return table
}

func TestMaskedMatchesScalar(t *testing.T) {
	const w, h = 16, 16
	p := testParams()
	rng := rand.New(rand.NewPCG(42, 0))

	g, err := core.NewGrid(w, h, []core.Orientation{{XDir: 1}, {YDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for i := range g.Cells {
		g.Cells[i] = core.Cell{
			Type:             core.CellType(rng.IntN(3)),
			State:            uint32(rng.IntN(int(p.APDuration) + 1)),
			OrientationIndex: uint32(rng.IntN(2)),
		}
	}
	neigh := make([]float64, w*h)
	for i := range neigh {
		// Mix clearly-below, clearly-above, and near-threshold values.
		neigh[i] = rng.Float64() * 2 * p.APThreshold
	}
	table := flatTable(neigh, 2)

	scalarGrid := g.Clone()
	maskedState := make([]float64, w*h)
	scalarState := make([]float64, w*h)

	updateSpan(g.Cells, table, maskedState, 2, p, 0, len(g.Cells))
	updateSpanScalar(scalarGrid.Cells, table, scalarState, 2, p, 0, len(scalarGrid.Cells))

	for i := range g.Cells {
		if g.Cells[i] != scalarGrid.Cells[i] {
			t.Fatalf("cell %d diverged: masked %+v scalar %+v", i, g.Cells[i], scalarGrid.Cells[i])
		}
		if maskedState[i] != scalarState[i] {
			t.Fatalf("state %d diverged: masked %g scalar %g", i, maskedState[i], scalarState[i])
		}
	}
}

func TestTissueFiresOnStrictThreshold(t *testing.T) {
	p := testParams()
	g, err := core.NewGrid(4, 1, []core.Orientation{{XDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	state := make([]float64, 4)
	// Exactly at threshold: must not fire. Just above: must fire.
	table := []float64{16.0, 16.5, 15.9, 0}
	Run(g, table, state, p, 1)

	if g.Cells[0].State != 0 {
		t.Fatalf("cell at exact threshold fired: %+v", g.Cells[0])
	}
	if g.Cells[1].State != p.APDuration || g.Cells[1].Type != core.Tissue {
		t.Fatalf("cell above threshold did not fire: %+v", g.Cells[1])
	}
	if g.Cells[2].State != 0 {
		t.Fatalf("cell below threshold fired: %+v", g.Cells[2])
	}
	if state[1] != float64(p.APDuration) {
		t.Fatalf("fired cell did not emit: %g", state[1])
	}
}

func TestActiveTissueGoesRefractory(t *testing.T) {
	p := testParams()
	g, err := core.NewGrid(1, 1, []core.Orientation{{XDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.Cells[0] = core.Cell{Type: core.Tissue, State: 1}
	state := make([]float64, 1)
	// Even a huge neighbour count cannot keep it firing.
	Run(g, []float64{1000}, state, p, 1)

	if g.Cells[0].Type != core.RestingTissue || g.Cells[0].State != p.RestDuration {
		t.Fatalf("tissue at state 1 should go refractory, got %+v", g.Cells[0])
	}
	if state[0] != 0 {
		t.Fatalf("refractory cell must not emit, got %g", state[0])
	}
}

func TestRestingReturnsToTissueWithoutFiring(t *testing.T) {
	p := testParams()
	g, err := core.NewGrid(1, 1, []core.Orientation{{XDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.Cells[0] = core.Cell{Type: core.RestingTissue, State: 1}
	state := make([]float64, 1)
	Run(g, []float64{1000}, state, p, 1)

	if g.Cells[0].Type != core.Tissue || g.Cells[0].State != 0 {
		t.Fatalf("resting at state 1 should become excitable tissue, got %+v", g.Cells[0])
	}
	if state[0] != 0 {
		t.Fatalf("fresh tissue at state 0 emits nothing, got %g", state[0])
	}

	// The following tick it may fire.
	Run(g, []float64{1000}, state, p, 1)
	if g.Cells[0].State != p.APDuration {
		t.Fatalf("tissue should fire the tick after leaving refractory, got %+v", g.Cells[0])
	}
}

func TestPacemakerCycles(t *testing.T) {
	p := testParams()
	g, err := core.NewGrid(1, 1, []core.Orientation{{XDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.Cells[0] = core.Cell{Type: core.Pacemaker, State: 0}
	state := make([]float64, 1)
	table := []float64{0}

	Run(g, table, state, p, 1)
	if g.Cells[0].State != p.APDuration || g.Cells[0].Type != core.Pacemaker {
		t.Fatalf("pacemaker at 0 should restart at APDuration, got %+v", g.Cells[0])
	}
	if state[0] != float64(p.APDuration) {
		t.Fatalf("pacemaker emission wrong: %g", state[0])
	}

	// Counting down and wrapping straight back to APDuration, never resting.
	for tick := 0; tick < 3*int(p.APDuration); tick++ {
		Run(g, table, state, p, 1)
		if g.Cells[0].Type != core.Pacemaker {
			t.Fatalf("pacemaker changed type at tick %d: %+v", tick, g.Cells[0])
		}
		if g.Cells[0].State == 0 || g.Cells[0].State > p.APDuration {
			t.Fatalf("pacemaker state out of cycle at tick %d: %d", tick, g.Cells[0].State)
		}
	}
}

func TestQuiescentGridStaysQuiescent(t *testing.T) {
	p := testParams()
	g, err := core.NewGrid(8, 8, []core.Orientation{{XDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	state := make([]float64, 64)
	table := make([]float64, 64)
	for tick := 0; tick < 10; tick++ {
		Run(g, table, state, p, 4)
	}
	for i := range g.Cells {
		if g.Cells[i] != (core.Cell{Type: core.Tissue}) {
			t.Fatalf("quiescent cell %d changed: %+v", i, g.Cells[i])
		}
		if state[i] != 0 {
			t.Fatalf("quiescent state %d nonzero: %g", i, state[i])
		}
	}
}

func TestStateBoundsInvariant(t *testing.T) {
	const w, h = 16, 8
	p := testParams()
	rng := rand.New(rand.NewPCG(5, 0))
	g, err := core.NewGrid(w, h, []core.Orientation{{XDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for i := range g.Cells {
		g.Cells[i] = core.Cell{
			Type:  core.CellType(rng.IntN(3)),
			State: uint32(rng.IntN(int(p.APDuration) + 1)),
		}
	}
	state := make([]float64, w*h)
	neigh := make([]float64, w*h)
	maxState := p.APDuration
	if p.RestDuration > maxState {
		maxState = p.RestDuration
	}
	for tick := 0; tick < 30; tick++ {
		for i := range neigh {
			neigh[i] = rng.Float64() * 40
		}
		Run(g, neigh, state, p, 3)
		for i := range g.Cells {
			if g.Cells[i].State > maxState {
				t.Fatalf("tick %d cell %d state %d exceeds max %d", tick, i, g.Cells[i].State, maxState)
			}
			if g.Cells[i].Type == core.RestingTissue && state[i] != 0 {
				t.Fatalf("tick %d resting cell %d emitted %g", tick, i, state[i])
			}
			if g.Cells[i].Type == core.Pacemaker && g.Cells[i].State == 0 {
				t.Fatalf("tick %d pacemaker %d left at state 0", tick, i)
			}
		}
	}
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	const w, h = 20, 13 // total deliberately not divisible by 8
	p := testParams()
	rng := rand.New(rand.NewPCG(9, 0))
	base, err := core.NewGrid(w, h, []core.Orientation{{XDir: 1}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for i := range base.Cells {
		base.Cells[i] = core.Cell{
			Type:  core.CellType(rng.IntN(3)),
			State: uint32(rng.IntN(int(p.APDuration) + 1)),
		}
	}
	neigh := make([]float64, w*h)
	for i := range neigh {
		neigh[i] = rng.Float64() * 30
	}

	var reference *core.Grid
	var referenceState []float64
	for _, workers := range []int{1, 3, 8} {
		g := base.Clone()
		state := make([]float64, w*h)
		Run(g, neigh, state, p, workers)
		if reference == nil {
			reference = g
			referenceState = state
			continue
		}
		for i := range g.Cells {
			if g.Cells[i] != reference.Cells[i] || state[i] != referenceState[i] {
				t.Fatalf("workers=%d diverged at cell %d", workers, i)
			}
		}
	}
}
