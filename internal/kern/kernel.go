// Package kern builds the directional distance-weighted convolution kernels
// used for neighbour excitation counting.
package kern

import (
	"math"

	"heart-ca/internal/core"
)

// Build returns the radius×radius coefficient kernel for one orientation.
// Each sample weights a neighbour by 1/d² and by how well its offset aligns
// with the orientation direction: full weight along the direction, zero
// weight directly opposite. The centre sample is zero so a cell never
// counts itself. Identical inputs produce bit-identical kernels.
func Build(o core.Orientation, radius int) []float64 {
	k := make([]float64, radius*radius)
	half := radius / 2
	mag := math.Sqrt(float64(o.XDir)*float64(o.XDir) + float64(o.YDir)*float64(o.YDir))
	for i := 0; i < radius; i++ {
		for j := 0; j < radius; j++ {
			if i == half && j == half {
				continue
			}
			x := float64(j - half)
			y := float64(i - half)
			distSq := x*x + y*y
			dot := x*float64(o.XDir) + y*float64(o.YDir)
			cosTheta := dot / (math.Sqrt(distSq) * mag)
			k[i*radius+j] = (1.0 / distSq) * (cosTheta + 1) * 0.5
		}
	}
	return k
}

// ShiftInto places a radius×radius kernel into the w×h padded buffer with a
// cyclic shift, so the kernel origin (radius/2, radius/2) lands on (0, 0)
// and the four quadrants wrap into the four corners. Convolving via a
// cyclic FFT against the shifted kernel then matches a direct convolution
// on the torus; this requires radius ≤ min(w, h).
func ShiftInto(kernel []float64, radius int, padded []float64, w, h int) {
	for i := range padded {
		padded[i] = 0
	}
	half := radius / 2
	// Lower-right quadrant of the kernel into the top-left corner.
	for i := half; i < radius; i++ {
		for j := half; j < radius; j++ {
			padded[(i-half)*w+(j-half)] = kernel[i*radius+j]
		}
	}
	// Lower-left quadrant into the top-right corner.
	for i := half; i < radius; i++ {
		for j := 0; j < half; j++ {
			padded[(i-half)*w+(w+j-half)] = kernel[i*radius+j]
		}
	}
	// Upper-right quadrant into the bottom-left corner.
	for i := 0; i < half; i++ {
		for j := half; j < radius; j++ {
			padded[(h+i-half)*w+(j-half)] = kernel[i*radius+j]
		}
	}
	// Upper-left quadrant into the bottom-right corner.
	for i := 0; i < half; i++ {
		for j := 0; j < half; j++ {
			padded[(h+i-half)*w+(w+j-half)] = kernel[i*radius+j]
		}
	}
}
