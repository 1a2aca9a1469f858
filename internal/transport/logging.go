package transport

import (
	applog "ftspreview/internal/log"
)

// LoggingTransport is the fallback when no network transport is enabled.
// It records that a frame was produced and drops it.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

func (t *LoggingTransport) Send(frame any) error {
	applog.Debugf("transport: frame produced (%T)", frame)
	return nil
}

func (t *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
