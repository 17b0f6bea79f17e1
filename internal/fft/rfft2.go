// Package fft provides the real-to-complex 2D transform used by the
// neighbour counter. The transform is composed from 1D passes: a real FFT
// of length W across each row, then a complex FFT of length H down each of
// the W/2+1 retained spectrum columns. Both directions are unnormalised,
// so a forward/inverse round trip scales the data by W·H; callers fold the
// 1/(W·H) factor into their spectral multiply.
package fft

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan holds the 1D transforms and scratch for one W×H problem size. A Plan
// is not safe for concurrent use; the neighbour counter runs orientations
// sequentially through a single plan.
type Plan struct {
	w, h  int
	halfW int

	row *fourier.FFT
	col *fourier.CmplxFFT

	rowCoef []complex128
	colSeq  []complex128
	colCoef []complex128
}

// NewPlan prepares transforms for a w×h real field.
func NewPlan(w, h int) (*Plan, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("fft plan dimensions must be positive, got %dx%d", w, h)
	}
	halfW := w/2 + 1
	return &Plan{
		w:       w,
		h:       h,
		halfW:   halfW,
		row:     fourier.NewFFT(w),
		col:     fourier.NewCmplxFFT(h),
		rowCoef: make([]complex128, halfW),
		colSeq:  make([]complex128, h),
		colCoef: make([]complex128, h),
	}, nil
}

// SpectrumLen returns the length of a half-spectrum buffer, H·(W/2+1).
func (p *Plan) SpectrumLen() int { return p.h * p.halfW }

// Forward transforms the w×h row-major real field seq into the half
// spectrum dst, laid out row-major as H rows of W/2+1 coefficients.
func (p *Plan) Forward(seq []float64, dst []complex128) {
	for y := 0; y < p.h; y++ {
		p.row.Coefficients(p.rowCoef, seq[y*p.w:(y+1)*p.w])
		copy(dst[y*p.halfW:(y+1)*p.halfW], p.rowCoef)
	}
	for x := 0; x < p.halfW; x++ {
		for y := 0; y < p.h; y++ {
			p.colSeq[y] = dst[y*p.halfW+x]
		}
		p.col.Coefficients(p.colCoef, p.colSeq)
		for y := 0; y < p.h; y++ {
			dst[y*p.halfW+x] = p.colCoef[y]
		}
	}
}

// Inverse transforms the half spectrum coef back into the w×h real field
// dst. The coefficient buffer is clobbered by the column pass.
func (p *Plan) Inverse(coef []complex128, dst []float64) {
	for x := 0; x < p.halfW; x++ {
		for y := 0; y < p.h; y++ {
			p.colCoef[y] = coef[y*p.halfW+x]
		}
		p.col.Sequence(p.colSeq, p.colCoef)
		for y := 0; y < p.h; y++ {
			coef[y*p.halfW+x] = p.colSeq[y]
		}
	}
	for y := 0; y < p.h; y++ {
		copy(p.rowCoef, coef[y*p.halfW:(y+1)*p.halfW])
		p.row.Sequence(dst[y*p.w:(y+1)*p.w], p.rowCoef)
	}
}
