// SPDX-License-Identifier: MIT
package opus

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Data block names with a known x-axis reconstruction rule.
const (
	BlockInterferogram    = "Data Block IgSm"
	BlockInterferogramRaw = "Data Block"
	BlockSpectrum         = "Data Block SpSm"
	BlockSpectrumSc       = "Data Block ScSm"
	BlockTransmittance    = "Data Block TrSm"
	BlockPhase            = "Data Block PhSm"
)

// triangularOPD scales the optical path difference estimate of the
// interferogram axis. The 0.9 carries a triangular-apodization assumption;
// the axis is illustrative, not metrologically exact.
const triangularOPD = 2 * 0.9

// SampleArray is the raw sample sequence of one data block together with
// its reconstructed physical x-axis. Both slices have equal length.
type SampleArray struct {
	X []float64
	Y []float64
}

// Extract reads the named data block and reconstructs its x-axis from
// header parameters. The y samples are stored as 32-bit floats in the
// container; the directory length already counts float units.
func Extract(dir Directory, hdr Header, src Source, name string) (*SampleArray, error) {
	blk, ok := dir[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBlockNotFound, name)
	}
	n := int(blk.Length)
	if n < 0 {
		return nil, fmt.Errorf("opus: block %q: negative sample count %d", name, n)
	}

	raw, err := src.ReadExact(int64(blk.Offset), n*4)
	if err != nil {
		return nil, fmt.Errorf("opus: block %q samples: %w", name, err)
	}
	y := make([]float64, n)
	for i := range y {
		y[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}

	x, err := xAxis(hdr, name, n)
	if err != nil {
		return nil, err
	}
	return &SampleArray{X: x, Y: y}, nil
}

// xAxis builds the physical axis for a data block. Interferogram blocks get
// an evenly spaced OPD estimate from the instrument resolution; spectral
// blocks span the first and last point stored in their data-parameter
// block.
func xAxis(hdr Header, name string, n int) ([]float64, error) {
	switch name {
	case BlockInterferogram, BlockInterferogramRaw:
		res, err := requireNumber(hdr, "Acquisition Parameters", "RES")
		if err != nil {
			return nil, err
		}
		if res == 0 {
			return nil, fmt.Errorf("%w: Acquisition Parameters/RES is zero", ErrMissingParameter)
		}
		return linspace(0, triangularOPD/res, n), nil

	case BlockSpectrum, BlockSpectrumSc, BlockTransmittance, BlockPhase:
		paramBlock := "Data Parameters" + name[len("Data Block"):]
		first, err := requireNumber(hdr, paramBlock, "FXV")
		if err != nil {
			return nil, err
		}
		last, err := requireNumber(hdr, paramBlock, "LXV")
		if err != nil {
			return nil, err
		}
		return linspace(first, last, n), nil

	default:
		return nil, fmt.Errorf("opus: no axis reconstruction rule for block %q", name)
	}
}

func requireNumber(hdr Header, block, tag string) (float64, error) {
	v, ok := hdr.Get(block, tag)
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrMissingParameter, block, tag)
	}
	f, ok := v.Number()
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s is %s, not numeric", ErrMissingParameter, block, tag, v.Kind)
	}
	return f, nil
}

func linspace(first, last float64, n int) []float64 {
	switch n {
	case 0:
		return []float64{}
	case 1:
		return []float64{first}
	}
	return floats.Span(make([]float64, n), first, last)
}
