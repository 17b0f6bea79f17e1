package record

import (
	"os"
	"path/filepath"
	"testing"

	"heart-ca/internal/core"
)

func TestRecorderWritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.avi")
	r, err := NewRecorder(path, 8, 8, 30)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	cells := make([]core.Cell, 64)
	cells[10] = core.Cell{Type: core.Tissue, State: 4}
	for i := 0; i < 3; i++ {
		if err := r.AddFrame(cells); err != nil {
			t.Fatalf("AddFrame: %v", err)
		}
	}
	if err := r.AddFrame(cells[:10]); err == nil {
		t.Fatal("expected error for wrong-size frame")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat recording: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("recording is empty")
	}
}
