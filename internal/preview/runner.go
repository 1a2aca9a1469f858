// SPDX-License-Identifier: MIT

// Package preview runs the measurement loop: fetch a preview measurement
// from the instrument, decode it in memory, smooth the interferogram and
// publish the frame over the configured transport.
package preview

import (
	"fmt"
	"sync"
	"time"

	applog "ftspreview/internal/log"
	"ftspreview/internal/opus"
	"ftspreview/internal/smooth"
	"ftspreview/internal/transport"
)

// Fetcher supplies raw measurement bytes, normally the instrument client.
type Fetcher interface {
	FetchPreview() ([]byte, error)
}

// Frame is one published preview cycle.
type Frame struct {
	Time          time.Time `json:"time"`
	Interferogram []float64 `json:"ifg"`
	Smoothed      []float64 `json:"ifg_smoothed"`
	Spectrum      []float64 `json:"spc"`
	SpectrumAxis  []float64 `json:"spc_wvn"`
	Window        []float64 `json:"apodization"`
	Wavenumbers   []float64 `json:"wvn"`
}

// Params are the smoothing settings of the loop.
type Params struct {
	LaserWavenumber float64
	Cutoff          float64
	WindowLength    int
}

// Runner periodically produces frames. Start launches its goroutine, Stop
// tears it down; both are safe to call once per lifecycle.
type Runner struct {
	fetcher  Fetcher
	sink     transport.Transport
	smoother *smooth.Smoother
	params   Params
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRunner wires a fetcher and a transport into a measurement loop.
func NewRunner(fetcher Fetcher, sink transport.Transport, params Params, interval time.Duration) (*Runner, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("preview: refresh interval %s must be positive", interval)
	}
	smoother, err := smooth.New(params.WindowLength)
	if err != nil {
		return nil, err
	}
	return &Runner{
		fetcher:  fetcher,
		sink:     sink,
		smoother: smoother,
		params:   params,
		interval: interval,
	}, nil
}

// Start begins the periodic measurement cycle.
func (r *Runner) Start() {
	r.ticker = time.NewTicker(r.interval)
	r.done = make(chan struct{})

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		applog.Infof("preview: loop started (every %s, npt=%d, cutoff=%g)",
			r.interval, r.params.WindowLength, r.params.Cutoff)
		for {
			select {
			case <-r.ticker.C:
				frame, err := r.RunOnce()
				if err != nil {
					applog.Errorf("preview: cycle failed: %v", err)
					continue
				}
				if err := r.sink.Send(frame); err != nil {
					applog.Warnf("preview: publish failed: %v", err)
				}
			case <-r.done:
				return
			}
		}
	}()
}

// Stop terminates the loop and waits for the goroutine to exit.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		if r.ticker != nil {
			r.ticker.Stop()
		}
		if r.done != nil {
			close(r.done)
		}
		r.wg.Wait()
		applog.Infof("preview: loop stopped")
	})
}

// RunOnce executes a single measurement cycle and returns the frame.
func (r *Runner) RunOnce() (*Frame, error) {
	data, err := r.fetcher.FetchPreview()
	if err != nil {
		return nil, err
	}

	src := opus.NewMemSource(data)
	file, err := opus.Read(src, applog.Debugf)
	if err != nil {
		return nil, err
	}
	ifg, err := file.Interferogram(src)
	if err != nil {
		return nil, err
	}
	peak, err := file.PeakIndex()
	if err != nil {
		return nil, err
	}

	res, err := r.smoother.Smooth(ifg.Y, peak, r.params.LaserWavenumber, r.params.Cutoff)
	if err != nil {
		return nil, err
	}
	mag, spcAxis := smooth.RawSpectrum(ifg.Y, r.params.LaserWavenumber)

	return &Frame{
		Time:          time.Now().UTC(),
		Interferogram: ifg.Y,
		Smoothed:      res.Smoothed,
		Spectrum:      mag,
		SpectrumAxis:  spcAxis,
		Window:        res.Window,
		Wavenumbers:   res.Wavenumbers,
	}, nil
}
