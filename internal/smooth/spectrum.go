// SPDX-License-Identifier: MIT
package smooth

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// RawSpectrum transforms a full, uncropped interferogram and returns the
// magnitude spectrum over the non-negative half of the wavenumber axis.
// Used by the preview path to show the spectrum next to the smoothed
// interferogram.
func RawSpectrum(ifg []float64, lwn float64) (mag, wvn []float64) {
	n := len(ifg)
	if n < 2 {
		return []float64{}, []float64{}
	}
	fft := fourier.NewCmplxFFT(n)
	in := make([]complex128, n)
	for i, v := range ifg {
		in[i] = complex(v, 0)
	}
	coeff := make([]complex128, n)
	fft.Coefficients(coeff, in)

	half := n / 2
	mag = make([]float64, half)
	wvn = make([]float64, half)
	for k := 0; k < half; k++ {
		mag[k] = cmplx.Abs(coeff[k])
		wvn[k] = fft.Freq(k) * 2 * lwn
	}
	return mag, wvn
}
