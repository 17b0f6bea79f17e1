package neighbour

// multiplySpectra computes dst := dst·ker·inv elementwise as complex
// multiplication. The body processes four coefficients per iteration,
// mirroring four double-precision lanes, with a scalar loop over the
// remainder; multiplySpectraScalar is the fallback path and produces
// identical results.
func multiplySpectra(dst, ker []complex128, inv float64) {
	n := len(dst) &^ 3
	for i := 0; i < n; i += 4 {
		a0, a1, a2, a3 := dst[i], dst[i+1], dst[i+2], dst[i+3]
		b0, b1, b2, b3 := ker[i], ker[i+1], ker[i+2], ker[i+3]
		dst[i] = complex(
			(real(a0)*real(b0)-imag(a0)*imag(b0))*inv,
			(real(a0)*imag(b0)+imag(a0)*real(b0))*inv,
		)
		dst[i+1] = complex(
			(real(a1)*real(b1)-imag(a1)*imag(b1))*inv,
			(real(a1)*imag(b1)+imag(a1)*real(b1))*inv,
		)
		dst[i+2] = complex(
			(real(a2)*real(b2)-imag(a2)*imag(b2))*inv,
			(real(a2)*imag(b2)+imag(a2)*real(b2))*inv,
		)
		dst[i+3] = complex(
			(real(a3)*real(b3)-imag(a3)*imag(b3))*inv,
			(real(a3)*imag(b3)+imag(a3)*real(b3))*inv,
		)
	}
	for i := n; i < len(dst); i++ {
		a, b := dst[i], ker[i]
		dst[i] = complex(
			(real(a)*real(b)-imag(a)*imag(b))*inv,
			(real(a)*imag(b)+imag(a)*real(b))*inv,
		)
	}
}

// multiplySpectraScalar is the plain one-coefficient-at-a-time version of
// multiplySpectra.
func multiplySpectraScalar(dst, ker []complex128, inv float64) {
	for i := range dst {
		a, b := dst[i], ker[i]
		dst[i] = complex(
			(real(a)*real(b)-imag(a)*imag(b))*inv,
			(real(a)*imag(b)+imag(a)*real(b))*inv,
		)
	}
}
