package render

import (
	"image/color"

	"heart-ca/internal/core"
)

// Firing tissue renders red, pacemakers magenta, everything else black.
// The selected cell is grey so it stays visible whatever its state.
var (
	tissueColor    = color.RGBA{R: 255, A: 255}
	pacemakerColor = color.RGBA{R: 255, B: 255, A: 255}
	selectedColor  = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	inactiveColor  = color.RGBA{A: 255}
)

// FillCellRGBA converts cells into RGBA pixels in buf. A cell is visible
// when it has a running action potential and is not refractory. selected
// is a cell index to highlight, or -1.
func FillCellRGBA(buf []byte, cells []core.Cell, selected int) {
	for i := range cells {
		col := inactiveColor
		switch {
		case i == selected:
			col = selectedColor
		case cells[i].State > 0 && cells[i].Type == core.Tissue:
			col = tissueColor
		case cells[i].State > 0 && cells[i].Type == core.Pacemaker:
			col = pacemakerColor
		}
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
