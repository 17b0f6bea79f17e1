//go:build !ebiten

package app

import (
	"heart-ca/internal/engine"
	"heart-ca/internal/record"
)

// Game is a placeholder used when the ebiten build tag is absent; the
// engine, codec, and monitor all build headless without it.
type Game struct{}

// New constructs a stub game.
func New(_ *engine.Engine, _ *Config, _ *record.Recorder) *Game { return &Game{} }
