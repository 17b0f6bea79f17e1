package kern

import (
	"math"
	"testing"

	"heart-ca/internal/core"
)

func TestBuildCentreIsZero(t *testing.T) {
	k := Build(core.Orientation{XDir: 1}, 8)
	if k[4*8+4] != 0 {
		t.Fatalf("centre coefficient must be zero, got %g", k[4*8+4])
	}
}

func TestBuildDeterministic(t *testing.T) {
	o := core.Orientation{XDir: 0.6, YDir: 0.8}
	a := Build(o, 16)
	b := Build(o, 16)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("kernel not bit-identical at %d: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestBuildDirectionality(t *testing.T) {
	const r = 8
	k := Build(core.Orientation{XDir: 1}, r)
	half := r / 2
	// Along +x the alignment factor is 1, along -x it is 0.
	right := k[half*r+(half+2)]
	left := k[half*r+(half-2)]
	want := (1.0 / 4.0) * 1.0
	if math.Abs(right-want) > 1e-12 {
		t.Fatalf("weight along +x = %g, want %g", right, want)
	}
	if left != 0 {
		t.Fatalf("weight along -x = %g, want 0", left)
	}
	// Perpendicular offsets get half weight.
	up := k[(half-2)*r+half]
	if math.Abs(up-(1.0/4.0)*0.5) > 1e-12 {
		t.Fatalf("perpendicular weight = %g, want %g", up, 0.125)
	}
}

func TestBuildToleratesNonUnitDirection(t *testing.T) {
	const r = 8
	unit := Build(core.Orientation{XDir: 1}, r)
	scaled := Build(core.Orientation{XDir: 5}, r)
	for i := range unit {
		if math.Abs(unit[i]-scaled[i]) > 1e-12 {
			t.Fatalf("direction magnitude leaked into kernel at %d: %g vs %g", i, unit[i], scaled[i])
		}
	}
}

func TestShiftIntoCorners(t *testing.T) {
	const r = 4
	const w, h = 8, 6
	kernel := make([]float64, r*r)
	for i := range kernel {
		kernel[i] = float64(i + 1)
	}
	padded := make([]float64, w*h)
	ShiftInto(kernel, r, padded, w, h)

	// Kernel origin (r/2, r/2) must land on (0, 0).
	if padded[0] != kernel[(r/2)*r+r/2] {
		t.Fatalf("origin not at (0,0): got %g want %g", padded[0], kernel[(r/2)*r+r/2])
	}
	// Sample one element from each wrapped quadrant.
	if padded[0*w+(w-1)] != kernel[(r/2)*r+(r/2-1)] {
		t.Fatalf("left-of-origin sample did not wrap to right edge")
	}
	if padded[(h-1)*w+0] != kernel[(r/2-1)*r+r/2] {
		t.Fatalf("above-origin sample did not wrap to bottom edge")
	}
	if padded[(h-1)*w+(w-1)] != kernel[(r/2-1)*r+(r/2-1)] {
		t.Fatalf("upper-left quadrant did not wrap to bottom-right corner")
	}

	// Mass is preserved.
	var sumK, sumP float64
	for _, v := range kernel {
		sumK += v
	}
	for _, v := range padded {
		sumP += v
	}
	if math.Abs(sumK-sumP) > 1e-12 {
		t.Fatalf("shift changed total mass: %g vs %g", sumK, sumP)
	}
}

func TestShiftIntoClearsStaleValues(t *testing.T) {
	const r = 4
	const w, h = 8, 8
	kernel := make([]float64, r*r)
	padded := make([]float64, w*h)
	for i := range padded {
		padded[i] = 99
	}
	ShiftInto(kernel, r, padded, w, h)
	for i, v := range padded {
		if v != 0 {
			t.Fatalf("stale value left at %d: %g", i, v)
		}
	}
}
