// Package feed wires the live-quote pipeline: a WebSocket stream client that
// merges ticks into the quote board, a debounced subscription manager that
// tells the backend which symbols to stream, and a REST poller that covers
// the gaps when the stream is down or the market is closed.
package feed

// ConnState is the lifecycle state of the stream connection. There is no
// terminal state; a closed stream always redials.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosed
)

// String returns the lower-case state name.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
