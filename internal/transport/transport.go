package transport

// Transport publishes preview frames to whoever is watching.
// Implementations must be safe for use from the runner goroutine while
// clients connect and disconnect.
type Transport interface {
	Send(frame any) error
	Close() error
}
