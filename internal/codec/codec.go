// Package codec implements the fixed little-endian binary grid format:
// a three-field header (width, height, numOrientations), one 12-byte
// record per cell, then one 12-byte record per orientation.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"heart-ca/internal/core"
)

const fieldSize = 4

var (
	// ErrTruncated reports a buffer shorter than its header promises.
	ErrTruncated = errors.New("grid dump truncated")
	// ErrSizeMismatch reports trailing bytes beyond the expected layout.
	ErrSizeMismatch = errors.New("grid dump size mismatch")
	// ErrLegacyFormat reports an old dump without the orientation trailer.
	ErrLegacyFormat = errors.New("legacy grid dump without orientation table")
)

func dumpSize(w, h, numOrientations int) int {
	return 3*fieldSize + 3*fieldSize*w*h + 3*fieldSize*numOrientations
}

// Serialize encodes the grid into a fresh byte slice.
func Serialize(g *core.Grid) []byte {
	n := g.NumOrientations()
	out := make([]byte, dumpSize(g.Width, g.Height, n))
	binary.LittleEndian.PutUint32(out[0:], uint32(g.Width))
	binary.LittleEndian.PutUint32(out[fieldSize:], uint32(g.Height))
	binary.LittleEndian.PutUint32(out[2*fieldSize:], uint32(n))

	off := 3 * fieldSize
	for i := range g.Cells {
		c := &g.Cells[i]
		binary.LittleEndian.PutUint32(out[off:], uint32(c.Type))
		binary.LittleEndian.PutUint32(out[off+fieldSize:], c.State)
		binary.LittleEndian.PutUint32(out[off+2*fieldSize:], c.OrientationIndex)
		off += 3 * fieldSize
	}
	for i := range g.Orientations {
		o := &g.Orientations[i]
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(o.XDir))
		binary.LittleEndian.PutUint32(out[off+fieldSize:], math.Float32bits(o.YDir))
		binary.LittleEndian.PutUint32(out[off+2*fieldSize:], o.CellCount)
		off += 3 * fieldSize
	}
	return out
}

// Deserialize decodes a grid dump. The decode is all-or-nothing: any
// structural problem returns an error and no grid. Orientation cell counts
// are rebuilt by scanning the cells rather than trusted from the file.
func Deserialize(data []byte) (*core.Grid, error) {
	if len(data) < 3*fieldSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrTruncated, len(data))
	}
	w := int(binary.LittleEndian.Uint32(data[0:]))
	h := int(binary.LittleEndian.Uint32(data[fieldSize:]))
	n := int(binary.LittleEndian.Uint32(data[2*fieldSize:]))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid dump dimensions %dx%d", w, h)
	}
	if w > math.MaxInt32/h {
		return nil, fmt.Errorf("dump dimensions %dx%d overflow", w, h)
	}
	// Old dumps lacked the orientation count and trailer entirely; their
	// third field is the first cell's type. Their length is always shorter
	// than any valid current dump of the same dimensions.
	if len(data) == 2*fieldSize+3*fieldSize*w*h {
		return nil, ErrLegacyFormat
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid dump orientation count %d", n)
	}

	expected := dumpSize(w, h, n)
	if len(data) != expected {
		if len(data) < expected {
			return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncated, len(data), expected)
		}
		return nil, fmt.Errorf("%w: have %d bytes, expected %d", ErrSizeMismatch, len(data), expected)
	}

	g := &core.Grid{
		Width:        w,
		Height:       h,
		Cells:        make([]core.Cell, w*h),
		Orientations: make([]core.Orientation, n),
	}
	off := 3 * fieldSize
	for i := range g.Cells {
		g.Cells[i] = core.Cell{
			Type:             core.CellType(binary.LittleEndian.Uint32(data[off:])),
			State:            binary.LittleEndian.Uint32(data[off+fieldSize:]),
			OrientationIndex: binary.LittleEndian.Uint32(data[off+2*fieldSize:]),
		}
		off += 3 * fieldSize
	}
	for i := range g.Orientations {
		g.Orientations[i] = core.Orientation{
			XDir: math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
			YDir: math.Float32frombits(binary.LittleEndian.Uint32(data[off+fieldSize:])),
		}
		off += 3 * fieldSize
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("decoded grid invalid: %w", err)
	}
	g.RebuildOrientationCounts()
	return g, nil
}

// SaveFile serializes the grid to path.
func SaveFile(g *core.Grid, path string) error {
	if err := os.WriteFile(path, Serialize(g), 0o644); err != nil {
		return fmt.Errorf("save grid: %w", err)
	}
	return nil
}

// LoadFile reads and decodes a grid dump from path.
func LoadFile(path string) (*core.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load grid: %w", err)
	}
	return Deserialize(data)
}
