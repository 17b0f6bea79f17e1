package codec

import (
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"reflect"
	"testing"

	"heart-ca/internal/core"
)

func assortedGrid(t *testing.T) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(6, 5, []core.Orientation{
		{XDir: 1},
		{XDir: -0.5, YDir: 0.25},
		{YDir: -1},
	})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	rng := rand.New(rand.NewPCG(17, 0))
	for i := range g.Cells {
		g.Cells[i] = core.Cell{
			Type:             core.CellType(rng.IntN(3)),
			State:            uint32(rng.IntN(9)),
			OrientationIndex: uint32(rng.IntN(3)),
		}
	}
	g.RebuildOrientationCounts()
	return g
}

func TestRoundTrip(t *testing.T) {
	g := assortedGrid(t)
	decoded, err := Deserialize(Serialize(g))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(g, decoded) {
		t.Fatalf("round trip changed grid:\n have %+v\n want %+v", decoded, g)
	}
}

func TestRoundTripThroughFile(t *testing.T) {
	g := assortedGrid(t)
	path := filepath.Join(t.TempDir(), "grid.bin")
	if err := SaveFile(g, path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	decoded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(g, decoded) {
		t.Fatal("file round trip changed grid")
	}
}

func TestCellCountsRebuiltNotTrusted(t *testing.T) {
	g := assortedGrid(t)
	data := Serialize(g)
	// Corrupt the stored cell count of orientation 0.
	off := 3*4 + 3*4*g.Width*g.Height + 2*4
	binary.LittleEndian.PutUint32(data[off:], 9999)

	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if decoded.Orientations[0].CellCount != g.Orientations[0].CellCount {
		t.Fatalf("cell count not rebuilt from cells: got %d want %d",
			decoded.Orientations[0].CellCount, g.Orientations[0].CellCount)
	}
}

func TestTruncatedDump(t *testing.T) {
	g := assortedGrid(t)
	data := Serialize(g)
	if _, err := Deserialize(data[:len(data)-5]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if _, err := Deserialize(data[:7]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated for sub-header dump, got %v", err)
	}
}

func TestTrailingGarbage(t *testing.T) {
	g := assortedGrid(t)
	data := append(Serialize(g), 0xAB)
	if _, err := Deserialize(data); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestLegacyDumpRejected(t *testing.T) {
	// Width and height only, then cell records: the pre-orientation layout.
	const w, h = 3, 2
	data := make([]byte, 2*4+3*4*w*h)
	binary.LittleEndian.PutUint32(data[0:], w)
	binary.LittleEndian.PutUint32(data[4:], h)
	if _, err := Deserialize(data); !errors.Is(err, ErrLegacyFormat) {
		t.Fatalf("expected ErrLegacyFormat, got %v", err)
	}
}

func TestBadOrientationIndexRejected(t *testing.T) {
	g := assortedGrid(t)
	g.Cells[0].OrientationIndex = 2 // valid while encoding
	data := Serialize(g)
	// Point the first cell beyond the orientation table.
	binary.LittleEndian.PutUint32(data[3*4+2*4:], 7)
	if _, err := Deserialize(data); err == nil {
		t.Fatal("expected error for out-of-range orientation index")
	}
}

func TestZeroDimensionsRejected(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[8:], 1)
	if _, err := Deserialize(data); err == nil {
		t.Fatal("expected error for zero dimensions")
	}
}
