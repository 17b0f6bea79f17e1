//go:build !ebiten

package ui

// StatusBar is a no-op placeholder used when the ebiten build tag is absent.
type StatusBar struct{}

// NewStatusBar constructs a stub status bar.
func NewStatusBar() *StatusBar { return &StatusBar{} }

// Draw is a no-op in headless builds.
func (s *StatusBar) Draw(_ any, _ ...string) {}
