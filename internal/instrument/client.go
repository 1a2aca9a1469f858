// Package instrument talks to the IFS125HR's embedded web control panel.
// The panel is plain HTML served by the instrument firmware; measurement
// state and download links are scraped out of the pages the same way the
// vendor's own tooling does.
package instrument

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	applog "ftspreview/internal/log"
)

// Measurement states reported in stat.htm.
const (
	StatusIdle     = "IDL"
	StatusScanning = "SCN"
)

// Client issues commands against one instrument's web panel. Safe for use
// from a single goroutine; the preview runner owns one.
type Client struct {
	baseURL      string
	previewPath  string
	shutdownPath string

	httpc        *http.Client
	pollInterval time.Duration
	maxPolls     int
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, used by tests.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithPollInterval sets the pause between status polls while a measurement
// is running.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithMaxPolls bounds the number of status polls per measurement before
// FetchPreview gives up.
func WithMaxPolls(n int) Option {
	return func(c *Client) { c.maxPolls = n }
}

// New creates a Client for the panel at host (address or address:port).
// previewPath and shutdownPath are the firmware command paths that start a
// low-resolution preview measurement and stop measuring.
func New(host, previewPath, shutdownPath string, opts ...Option) *Client {
	c := &Client{
		baseURL:      "http://" + host,
		previewPath:  strings.TrimPrefix(previewPath, "/"),
		shutdownPath: strings.TrimPrefix(shutdownPath, "/"),
		httpc:        &http.Client{Timeout: 30 * time.Second},
		pollInterval: 500 * time.Millisecond,
		maxPolls:     240,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartMeasurement sends the preview measurement command.
func (c *Client) StartMeasurement() error {
	_, err := c.get(c.baseURL + "/" + c.previewPath)
	return err
}

// StopMeasurement sends the stop command.
func (c *Client) StopMeasurement() error {
	_, err := c.get(c.baseURL + "/" + c.shutdownPath)
	return err
}

// Status scrapes the measurement state (e.g. "SCN", "IDL") out of the
// MSTCO field of stat.htm.
func (c *Client) Status() (string, error) {
	page, err := c.get(c.baseURL + "/stat.htm")
	if err != nil {
		return "", err
	}
	// The status value sits between `ID=MSTCO>` and the next tag.
	i := strings.LastIndex(page, "ID=MSTCO")
	if i < 0 {
		return "", fmt.Errorf("instrument: no MSTCO field in stat.htm")
	}
	rest := page[i+len("ID=MSTCO")+1:]
	end := strings.IndexByte(rest, '<')
	if end < 0 {
		return "", fmt.Errorf("instrument: unterminated MSTCO field in stat.htm")
	}
	return rest[:end], nil
}

// DownloadLink scrapes the measurement file link out of datafile.htm.
func (c *Client) DownloadLink() (string, error) {
	page, err := c.get(c.baseURL + "/datafile.htm")
	if err != nil {
		return "", err
	}
	i := strings.Index(page, `A HREF="`)
	if i < 0 {
		return "", fmt.Errorf("instrument: no download link in datafile.htm")
	}
	rest := page[i+len(`A HREF="`):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", fmt.Errorf("instrument: unterminated download link in datafile.htm")
	}
	return strings.TrimPrefix(rest[:end], "/"), nil
}

// FetchPreview runs one measurement cycle: start a preview measurement,
// poll until the instrument is idle again, then download the measurement
// bytes. The returned buffer is a complete FTS container.
func (c *Client) FetchPreview() ([]byte, error) {
	if err := c.StartMeasurement(); err != nil {
		return nil, fmt.Errorf("instrument: start measurement: %w", err)
	}
	if err := c.waitIdle(); err != nil {
		return nil, err
	}

	link, err := c.DownloadLink()
	if err != nil {
		return nil, err
	}
	applog.Debugf("instrument: downloading %s", link)
	data, err := c.getBytes(c.baseURL + "/" + link)
	if err != nil {
		return nil, fmt.Errorf("instrument: download measurement: %w", err)
	}
	return data, nil
}

func (c *Client) waitIdle() error {
	for polls := 0; polls < c.maxPolls; polls++ {
		status, err := c.Status()
		if err != nil {
			return err
		}
		if status == StatusIdle {
			return nil
		}
		time.Sleep(c.pollInterval)
	}
	return fmt.Errorf("instrument: still measuring after %d status polls", c.maxPolls)
}

func (c *Client) get(url string) (string, error) {
	data, err := c.getBytes(url)
	return string(data), err
}

func (c *Client) getBytes(url string) ([]byte, error) {
	resp, err := c.httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instrument: GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
