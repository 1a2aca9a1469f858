// SPDX-License-Identifier: MIT
package smooth

import (
	"math"
	"math/cmplx"
	"sort"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

// testInterferogram builds a deterministic signal with a sharp centerburst
// at the middle, resembling a real interferogram closely enough for the
// pipeline tests.
func testInterferogram(n int) ([]float64, int) {
	ifg := make([]float64, n)
	peak := n / 2
	for i := range ifg {
		d := float64(i - peak)
		ifg[i] = 40*math.Exp(-d*d/18) + math.Sin(0.4*float64(i)) + 0.2
	}
	return ifg, peak
}

func refMedian(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	h := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[h]
	}
	return (sorted[h-1] + sorted[h]) / 2
}

func TestMedianMidpointForEvenLength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		desc string
		crop []float64
		want float64
	}{
		{"Even length midpoint", []float64{1, 2, 3, 4}, 2.5},
		{"Even length unsorted", []float64{4, 1, 3, 2}, 2.5},
		{"Even length negative", []float64{-3, -1, 2, 8, 9, 10}, 5},
		{"Odd length central value", []float64{9, 1, 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			s, err := New(len(tt.crop))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := s.median(tt.crop); got != tt.want {
				t.Errorf("median(%v) = %g, want %g", tt.crop, got, tt.want)
			}
		})
	}
}

func TestSmoothSubtractsMidpointMedian(t *testing.T) {
	t.Parallel()
	const n = 4
	// The zero-cutoff identity path hands the median-subtracted crop
	// straight through, so any offset bias shows up directly.
	ifg := []float64{0, 0, 2.5, 2.5, 7, 7, 0, 0}

	res, err := Smooth(ifg, 4, 15798.022, 0, n)
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}

	// Crop is [2.5 2.5 7 7]; the midpoint median 4.75 centres it exactly.
	want := []float64{-2.25, -2.25, 2.25, 2.25}
	for i, got := range res.Smoothed {
		if math.Abs(got-want[i]) > 1e-9 {
			t.Errorf("Smoothed[%d] = %g, want %g", i, got, want[i])
		}
	}
}

func TestApodization(t *testing.T) {
	t.Parallel()
	w := Apodization(64) // 5% ramp = 3 samples per edge

	if len(w) != 64 {
		t.Fatalf("len = %d, want 64", len(w))
	}
	// Outermost sample of the ramp: ((cos(2π/3)+1)²)/4 = 1/16.
	if math.Abs(w[0]-0.0625) > 1e-12 {
		t.Errorf("w[0] = %g, want 0.0625", w[0])
	}
	if w[32] != 1 {
		t.Errorf("w[32] = %g, want 1 in the flat interior", w[32])
	}
	for i := range w {
		if w[i] != w[len(w)-1-i] {
			t.Fatalf("window asymmetric at %d: %g vs %g", i, w[i], w[len(w)-1-i])
		}
		if w[i] < 0 || w[i] > 1 {
			t.Fatalf("w[%d] = %g outside [0, 1]", i, w[i])
		}
	}

	// At realistic lengths the edges are pinned near zero.
	long := Apodization(4000)
	if long[0] > 1e-3 {
		t.Errorf("w[0] = %g for n=4000, want near zero", long[0])
	}
}

func TestNewRejectsShortWindow(t *testing.T) {
	t.Parallel()
	for _, n := range []int{-1, 0, 1} {
		if _, err := New(n); err == nil {
			t.Errorf("New(%d) succeeded, want error", n)
		}
	}
}

func TestSmoothZeroInputStaysZero(t *testing.T) {
	t.Parallel()
	ifg := make([]float64, 128)
	for _, cutoff := range []float64{0, 500, 3700, 1e6} {
		res, err := Smooth(ifg, 64, 15798.022, cutoff, 64)
		if err != nil {
			t.Fatalf("Smooth(cutoff=%g): %v", cutoff, err)
		}
		for i, v := range res.Smoothed {
			if math.Abs(v) > 1e-12 {
				t.Fatalf("Smoothed[%d] = %g for zero input, cutoff %g", i, v, cutoff)
			}
		}
	}
}

func TestSmoothIdentityWhenNoBinsSelected(t *testing.T) {
	t.Parallel()
	const n = 64
	ifg, peak := testInterferogram(2 * n)

	// The axis starts at zero, so a zero cutoff selects no bins and the
	// round trip must reproduce the apodized, median-subtracted crop.
	res, err := Smooth(ifg, peak, 15798.022, 0, n)
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}

	crop := ifg[peak-n/2 : peak+n/2]
	med := refMedian(crop)
	window := Apodization(n)
	for i, got := range res.Smoothed {
		want := (crop[i] - med) * window[i]
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("Smoothed[%d] = %g, want %g (apodized crop)", i, got, want)
		}
	}
}

func TestSmoothTapersSpectrumEdges(t *testing.T) {
	t.Parallel()
	const (
		n      = 64
		cutoff = 8.0
	)
	ifg, peak := testInterferogram(2 * n)

	// lwn = n/2 makes the axis wvn[k] = k, so the cutoff selects exactly
	// the first 8 bins.
	res, err := Smooth(ifg, peak, n/2, cutoff, n)
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}

	// Reference spectrum of the apodized crop, before the filter.
	crop := ifg[peak-n/2 : peak+n/2]
	med := refMedian(crop)
	window := Apodization(n)
	in := make([]complex128, n)
	for i, v := range crop {
		in[i] = complex((v-med)*window[i], 0)
	}
	ref := make([]complex128, n)
	fourier.NewCmplxFFT(n).Coefficients(ref, in)

	for k := 0; k < n; k++ {
		var gain float64
		switch {
		case k < int(cutoff):
			c := math.Cos(math.Pi * float64(k) / (2 * cutoff))
			gain = c * c
		case k >= n-int(cutoff):
			c := math.Cos(math.Pi * float64(n-1-k) / (2 * cutoff))
			gain = c * c
		default:
			gain = 1
		}
		want := ref[k] * complex(gain, 0)
		if cmplx.Abs(res.Spectrum[k]-want) > 1e-9 {
			t.Fatalf("Spectrum[%d] = %v, want %v (gain %g)", k, res.Spectrum[k], want, gain)
		}
	}

	if len(res.Wavenumbers) != n/2 {
		t.Fatalf("axis has %d entries, want %d", len(res.Wavenumbers), n/2)
	}
	for k, w := range res.Wavenumbers {
		if math.Abs(w-float64(k)) > 1e-9 {
			t.Fatalf("Wavenumbers[%d] = %g, want %d", k, w, k)
		}
	}
}

func TestSmoothInverseStaysReal(t *testing.T) {
	t.Parallel()
	const n = 64
	ifg, peak := testInterferogram(2 * n)

	res, err := Smooth(ifg, peak, 15798.022, 3700, n)
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}

	// The filtered spectrum stays conjugate-symmetric, so its inverse must
	// be real up to rounding noise.
	inverse := make([]complex128, n)
	fourier.NewCmplxFFT(n).Sequence(inverse, res.Spectrum)
	scale := math.Max(1, maxAbsComplex(inverse))
	for i, v := range inverse {
		if math.Abs(imag(v))/scale > 1e-12 {
			t.Fatalf("inverse[%d] imaginary residual %g relative to %g", i, imag(v), scale)
		}
		if got := real(v) / n; math.Abs(got-res.Smoothed[i]) > 1e-9 {
			t.Fatalf("Smoothed[%d] = %g, inverse gives %g", i, res.Smoothed[i], got)
		}
	}
}

func maxAbsComplex(xs []complex128) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, cmplx.Abs(x))
	}
	return m
}

func TestSmoothCropBounds(t *testing.T) {
	t.Parallel()
	ifg := make([]float64, 100)

	tests := []struct {
		desc string
		peak int
	}{
		{"Peak too close to start", 10},
		{"Peak too close to end", 95},
		{"Peak negative", -1},
		{"Peak past end", 500},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if _, err := Smooth(ifg, tt.peak, 15798.022, 3700, 64); err == nil {
				t.Errorf("Smooth(peak=%d) succeeded, want bounds error", tt.peak)
			}
		})
	}
}

func TestSmoothRejectsNonpositiveWavenumber(t *testing.T) {
	t.Parallel()
	ifg, peak := testInterferogram(128)
	for _, lwn := range []float64{0, -15798.022} {
		if _, err := Smooth(ifg, peak, lwn, 3700, 64); err == nil {
			t.Errorf("Smooth(lwn=%g) succeeded, want error", lwn)
		}
	}
}

func TestSmootherReuse(t *testing.T) {
	t.Parallel()
	s, err := New(64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.WindowLength() != 64 {
		t.Errorf("WindowLength() = %d, want 64", s.WindowLength())
	}

	ifg, peak := testInterferogram(256)
	first, err := s.Smooth(ifg, peak, 15798.022, 3700)
	if err != nil {
		t.Fatalf("first Smooth: %v", err)
	}
	second, err := s.Smooth(ifg, peak, 15798.022, 3700)
	if err != nil {
		t.Fatalf("second Smooth: %v", err)
	}
	for i := range first.Smoothed {
		if first.Smoothed[i] != second.Smoothed[i] {
			t.Fatalf("scratch reuse changed sample %d: %g vs %g",
				i, first.Smoothed[i], second.Smoothed[i])
		}
	}
}

func TestRawSpectrumLocatesTone(t *testing.T) {
	t.Parallel()
	const n = 64
	// lwn = n/2 maps bin k to wavenumber k; a tone at 5 cycles across the
	// window must dominate bin 5.
	ifg := make([]float64, n)
	for i := range ifg {
		ifg[i] = math.Cos(2 * math.Pi * 5 * float64(i) / n)
	}

	mag, wvn := RawSpectrum(ifg, n/2)
	if len(mag) != n/2 || len(wvn) != n/2 {
		t.Fatalf("lengths = %d, %d, want %d", len(mag), len(wvn), n/2)
	}

	argmax := 0
	for k, m := range mag {
		if m > mag[argmax] {
			argmax = k
		}
	}
	if argmax != 5 {
		t.Errorf("magnitude peak at bin %d, want 5", argmax)
	}
	if wvn[5] != 5 {
		t.Errorf("wvn[5] = %g, want 5", wvn[5])
	}
}

func TestRawSpectrumShortInput(t *testing.T) {
	t.Parallel()
	mag, wvn := RawSpectrum([]float64{1}, 15798.022)
	if len(mag) != 0 || len(wvn) != 0 {
		t.Errorf("RawSpectrum of one sample = %v, %v, want empty", mag, wvn)
	}
}

func BenchmarkSmooth(b *testing.B) {
	ifg, peak := testInterferogram(16384)
	s, err := New(4000)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := s.Smooth(ifg, peak, 15798.022, 3700); err != nil {
			b.Fatal(err)
		}
	}
}
