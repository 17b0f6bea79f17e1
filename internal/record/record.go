// Package record captures simulation frames into an MJPEG AVI so runs can
// be reviewed after the fact.
package record

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"heart-ca/internal/core"
	"heart-ca/internal/render"
)

// Recorder encodes one video frame per captured grid snapshot. It is used
// from a single goroutine (the render loop).
type Recorder struct {
	aw   mjpeg.AviWriter
	w, h int

	frame *image.RGBA
	buf   bytes.Buffer
	opts  *jpeg.Options
}

// NewRecorder opens an AVI at path sized to the grid.
func NewRecorder(path string, w, h, fps int) (*Recorder, error) {
	if fps <= 0 {
		fps = 30
	}
	aw, err := mjpeg.New(path, int32(w), int32(h), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	return &Recorder{
		aw:    aw,
		w:     w,
		h:     h,
		frame: image.NewRGBA(image.Rect(0, 0, w, h)),
		opts:  &jpeg.Options{Quality: 90},
	}, nil
}

// AddFrame renders the cells with the standard palette and appends the
// frame to the video. Snapshots of the wrong size are rejected.
func (r *Recorder) AddFrame(cells []core.Cell) error {
	if len(cells) != r.w*r.h {
		return fmt.Errorf("frame has %d cells, recorder sized for %dx%d", len(cells), r.w, r.h)
	}
	render.FillCellRGBA(r.frame.Pix, cells, -1)
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, r.frame, r.opts); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := r.aw.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close finalises the AVI index and releases the file.
func (r *Recorder) Close() error {
	return r.aw.Close()
}
