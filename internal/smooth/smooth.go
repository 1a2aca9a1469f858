// SPDX-License-Identifier: MIT

// Package smooth low-pass filters interferograms to expose detector
// nonlinearity: a crop around the centerburst is apodized, transformed,
// tapered near the aliased spectrum edges and transformed back.
package smooth

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Result bundles the smoothed time-domain signal with the intermediate
// arrays a caller needs for plotting and diagnosis.
type Result struct {
	// Smoothed is the real part of the inverse transform, same length as
	// the crop.
	Smoothed []float64
	// Spectrum is the full complex spectrum after the filter window.
	Spectrum []complex128
	// Window is the apodization window applied to the crop.
	Window []float64
	// Wavenumbers is the non-negative half of the frequency axis in
	// reciprocal centimetres.
	Wavenumbers []float64
}

// Smoother applies the pipeline at a fixed window length. Buffers and the
// FFT plan are allocated once; a Smoother is not safe for concurrent use.
type Smoother struct {
	n      int
	fft    *fourier.CmplxFFT
	window []float64

	// Scratch reused across calls.
	crop    []complex128
	coeff   []complex128
	inverse []complex128
	sorted  []float64
}

// New creates a Smoother for crops of n samples.
func New(n int) (*Smoother, error) {
	if n < 2 {
		return nil, fmt.Errorf("smooth: window length %d too short", n)
	}
	return &Smoother{
		n:       n,
		fft:     fourier.NewCmplxFFT(n),
		window:  Apodization(n),
		crop:    make([]complex128, n),
		coeff:   make([]complex128, n),
		inverse: make([]complex128, n),
		sorted:  make([]float64, n),
	}, nil
}

// WindowLength returns the crop length n.
func (s *Smoother) WindowLength() int { return s.n }

// Smooth crops n samples of ifg centred on peak, removes the median offset,
// apodizes, and filters the spectrum with a raised-cosine taper over the
// bins below cutoff (in reciprocal centimetres, against the laser
// wavenumber lwn) at both spectrum edges.
//
// The filter window is all-ones with a raised-cosine taper over the cutoff
// bins at both spectrum edges, so a cutoff that selects zero bins leaves
// the spectrum untouched and the result equals the apodized crop.
func (s *Smoother) Smooth(ifg []float64, peak int, lwn, cutoff float64) (*Result, error) {
	if lwn <= 0 {
		return nil, fmt.Errorf("smooth: laser wavenumber %g must be positive", lwn)
	}
	lo := peak - s.n/2
	hi := lo + s.n
	if lo < 0 || hi > len(ifg) {
		return nil, fmt.Errorf("smooth: crop [%d:%d] around peak %d outside interferogram of %d samples",
			lo, hi, peak, len(ifg))
	}
	crop := ifg[lo:hi]
	med := s.median(crop)

	for i, v := range crop {
		s.crop[i] = complex((v-med)*s.window[i], 0)
	}
	s.fft.Coefficients(s.coeff, s.crop)

	wvn := s.wavenumbers(lwn)
	cut := cutoffBins(wvn, cutoff)

	// Identity away from the edges; the taper only touches the cut lowest
	// bins and their mirrored aliases at the end of the spectrum.
	filter := make([]complex128, s.n)
	for i := range filter {
		filter[i] = 1
	}
	for k := 0; k < cut; k++ {
		c := math.Cos(math.Pi * wvn[k] / (2 * cutoff))
		filter[k] = complex(c*c, 0)
	}
	for k := 0; k < cut; k++ {
		filter[s.n-cut+k] = filter[cut-1-k]
	}

	spectrum := make([]complex128, s.n)
	for i := range spectrum {
		spectrum[i] = s.coeff[i] * filter[i]
	}

	// gonum's inverse is unnormalized; scale by 1/n. The filter keeps the
	// spectrum conjugate-symmetric, so the imaginary part is numerically
	// negligible and dropped.
	s.fft.Sequence(s.inverse, spectrum)
	smoothed := make([]float64, s.n)
	for i, v := range s.inverse {
		smoothed[i] = real(v) / float64(s.n)
	}

	return &Result{
		Smoothed:    smoothed,
		Spectrum:    spectrum,
		Window:      append([]float64(nil), s.window...),
		Wavenumbers: wvn,
	}, nil
}

// wavenumbers is the first (non-negative) half of the transform's frequency
// axis with bin spacing 0.5/lwn, i.e. bin k maps to k*2*lwn/n.
func (s *Smoother) wavenumbers(lwn float64) []float64 {
	wvn := make([]float64, s.n/2)
	for k := range wvn {
		wvn[k] = s.fft.Freq(k) * 2 * lwn
	}
	return wvn
}

// cutoffBins counts axis entries strictly below cutoff.
func cutoffBins(wvn []float64, cutoff float64) int {
	n := 0
	for _, w := range wvn {
		if w < cutoff {
			n++
		}
	}
	return n
}

// median of the crop; even-length crops take the midpoint of the two
// central values. Window lengths are even in practice, so the midpoint
// matters for the DC offset.
func (s *Smoother) median(crop []float64) float64 {
	copy(s.sorted, crop)
	sort.Float64s(s.sorted)
	h := s.n / 2
	if s.n%2 == 1 {
		return s.sorted[h]
	}
	return (s.sorted[h-1] + s.sorted[h]) / 2
}

// Apodization builds the raised-cosine edge window of length n: interior
// one, with the first and last 5% of samples ramping as ((cos(πk/l)+1)/2)²,
// reversed at the leading edge.
func Apodization(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	l := n * 5 / 100
	for k := 0; k < l; k++ {
		c := math.Cos(math.Pi*float64(k)/float64(l)) + 1
		v := c * c / 4
		w[l-1-k] = v
		w[n-l+k] = v
	}
	return w
}

// Smooth is the one-shot form of Smoother.Smooth for callers without a
// fixed window length.
func Smooth(ifg []float64, peak int, lwn, cutoff float64, n int) (*Result, error) {
	s, err := New(n)
	if err != nil {
		return nil, err
	}
	return s.Smooth(ifg, peak, lwn, cutoff)
}
