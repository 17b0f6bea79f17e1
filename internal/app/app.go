//go:build ebiten

package app

import (
	"fmt"
	"log"

	"heart-ca/internal/core"
	"heart-ca/internal/engine"
	"heart-ca/internal/record"
	"heart-ca/internal/render"
	"heart-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts the simulation engine to the ebiten.Game interface. The
// engine ticks on its own goroutine; this type only dispatches input and
// renders snapshots.
type Game struct {
	engine *engine.Engine
	cfg    *Config

	painter  *render.GridPainter
	status   *ui.StatusBar
	recorder *record.Recorder

	cells []core.Cell

	selX, selY int
	rectActive bool
	dragging   bool
	rx0, ry0   int
	rx1, ry1   int

	offsetX, offsetY float64
	zoom             float64
}

// New constructs a Game for the provided engine.
func New(e *engine.Engine, cfg *Config, rec *record.Recorder) *Game {
	w, h := e.Size()
	return &Game{
		engine:   e,
		cfg:      cfg,
		painter:  render.NewGridPainter(w, h),
		status:   ui.NewStatusBar(),
		recorder: rec,
		selX:     -1,
		selY:     -1,
		zoom:     float64(cfg.Scale),
	}
}

// Update handles per-frame input and dispatches it into the engine.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.engine.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.engine.Step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.engine.ShockAll()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.applyOp(engine.Excite)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.applyOp(engine.Quench)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.applyOp(engine.ToggleResting)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		if err := g.engine.Save(g.cfg.GridPath); err != nil {
			log.Printf("save: %v", err)
		} else {
			log.Printf("saved grid to %s", g.cfg.GridPath)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		if err := g.engine.Load(g.cfg.GridPath); err != nil {
			log.Printf("load: %v", err)
		} else {
			w, h := g.engine.Size()
			g.painter.Resize(w, h)
			g.clearSelection()
			log.Printf("loaded grid from %s", g.cfg.GridPath)
		}
	}

	g.handleView()
	g.handleMouse()
	return nil
}

func (g *Game) handleView() {
	pan := 16.0 / g.zoom
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.offsetX += pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.offsetX -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.offsetY += pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.offsetY -= pan
	}
	_, wheel := ebiten.Wheel()
	if wheel > 0 || inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.zoom *= 1.25
	}
	if wheel < 0 || inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.zoom /= 1.25
	}
	if g.zoom < 0.25 {
		g.zoom = 0.25
	}
	if g.zoom > 64 {
		g.zoom = 64
	}
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	cx := int(float64(mx)/g.zoom - g.offsetX)
	cy := int(float64(my)/g.zoom - g.offsetY)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.selX, g.selY = cx, cy
		g.rectActive = false
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.dragging = true
		g.rectActive = false
		g.rx0, g.ry0 = cx, cy
		g.rx1, g.ry1 = cx, cy
	}
	if g.dragging {
		g.rx1, g.ry1 = cx, cy
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
			g.dragging = false
			g.rectActive = g.rx0 != g.rx1 || g.ry0 != g.ry1
		}
	}
}

func (g *Game) applyOp(op engine.EditOp) {
	if g.rectActive {
		g.engine.EditRect(g.rx0, g.ry0, g.rx1, g.ry1, op)
		return
	}
	if g.selX >= 0 {
		g.engine.EditCell(g.selX, g.selY, op)
	}
}

func (g *Game) clearSelection() {
	g.selX, g.selY = -1, -1
	g.rectActive = false
	g.dragging = false
}

// Draw renders the latest consistent snapshot of the grid.
func (g *Game) Draw(screen *ebiten.Image) {
	var w, h int
	g.cells, w, h = g.engine.CopyCells(g.cells)

	selected := -1
	if g.selX >= 0 && g.selX < w && g.selY >= 0 && g.selY < h {
		selected = g.selY*w + g.selX
	}
	g.painter.Blit(screen, g.cells, selected, g.offsetX, g.offsetY, g.zoom)

	var statusLine, modeLine string
	if selected >= 0 {
		statusLine = g.engine.StatusAt(g.selX, g.selY)
	}
	if g.engine.Paused() {
		modeLine = fmt.Sprintf("PAUSED  tick %d", g.engine.Ticks())
	}
	g.status.Draw(screen, statusLine, modeLine)

	if g.recorder != nil {
		if err := g.recorder.AddFrame(g.cells); err != nil {
			log.Printf("record: %v", err)
			g.recorder = nil
		}
	}
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width * g.cfg.Scale, g.cfg.Height * g.cfg.Scale
}
