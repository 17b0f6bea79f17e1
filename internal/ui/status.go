//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// StatusBar draws the selected-cell line and an optional mode line in the
// top-right corner, over a dimmed backing strip so it stays readable above
// active tissue.
type StatusBar struct {
	strip *ebiten.Image
}

// NewStatusBar constructs a status bar.
func NewStatusBar() *StatusBar {
	s := &StatusBar{strip: ebiten.NewImage(1, 1)}
	s.strip.Fill(color.RGBA{A: 160})
	return s
}

// Draw paints the lines right-aligned from the top edge. Empty lines are
// skipped.
func (s *StatusBar) Draw(screen *ebiten.Image, lines ...string) {
	face := basicfont.Face7x13
	y := face.Height + 2
	for _, line := range lines {
		if line == "" {
			continue
		}
		w := text.BoundString(face, line).Dx()
		x := screen.Bounds().Dx() - w - 4

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(w+8), float64(face.Height+4))
		op.GeoM.Translate(float64(x-4), float64(y-face.Height))
		screen.DrawImage(s.strip, op)

		text.Draw(screen, line, face, x, y, color.White)
		y += face.Height + 6
	}
}
