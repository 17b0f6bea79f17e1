//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"heart-ca/internal/core"
)

// GridPainter uploads the cell lattice into a single RGBA image and draws
// it with the current pan offset and zoom factor.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Resize reallocates the backing image after a grid reload.
func (gp *GridPainter) Resize(w, h int) {
	if w == gp.w && h == gp.h {
		return
	}
	gp.w, gp.h = w, h
	gp.buf = make([]byte, 4*w*h)
	gp.img = ebiten.NewImage(w, h)
}

// Blit uploads the cells and draws them panned by (offsetX, offsetY) in
// cell units and scaled by zoom.
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []core.Cell, selected int, offsetX, offsetY, zoom float64) {
	if len(cells) != gp.w*gp.h {
		return
	}
	if zoom <= 0 {
		zoom = 1
	}
	FillCellRGBA(gp.buf, cells, selected)
	gp.img.ReplacePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(offsetX, offsetY)
	op.GeoM.Scale(zoom, zoom)
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
