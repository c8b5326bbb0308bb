package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/symbols"
	"github.com/abhij1306/algotrading-sub001/internal/util"
)

// SubscribeBackend is the slice of the backend client the subscriber needs.
type SubscribeBackend interface {
	Subscribe(ctx context.Context, symbols []string) error
}

// Subscriber turns visible-set changes into replace-style subscribe calls
// against the backend. Rapid changes are debounced so a fast page-through
// sends only the final set; a failed call is logged and left for the next
// change or reconnect to supersede.
type Subscriber struct {
	backend SubscribeBackend
	log     *slog.Logger
	deb     *util.Debouncer
	timeout time.Duration

	mu      sync.Mutex
	current []string // exchange-qualified ids
}

// NewSubscriber creates a Subscriber that waits `wait` after the last set
// change before sending.
func NewSubscriber(b SubscribeBackend, wait time.Duration, log *slog.Logger) *Subscriber {
	s := &Subscriber{
		backend: b,
		log:     log,
		timeout: 5 * time.Second,
	}
	s.deb = util.NewDebouncer(wait, s.send)
	return s
}

// Set records the new visible set (bare tickers) and schedules a debounced
// subscribe. The backend replaces the previous subscription wholesale, so
// no unsubscribe call is needed.
func (s *Subscriber) Set(tickers []string) {
	s.mu.Lock()
	s.current = symbols.QualifyAll(tickers)
	s.mu.Unlock()
	s.deb.Trigger()
}

// Resend issues the current set immediately, bypassing the debounce. Called
// after the stream reconnects, since the backend forgets the subscription
// with the connection.
func (s *Subscriber) Resend() {
	s.deb.Stop()
	s.send()
}

// Stop cancels any pending debounced send.
func (s *Subscriber) Stop() {
	s.deb.Stop()
}

func (s *Subscriber) send() {
	s.mu.Lock()
	syms := make([]string, len(s.current))
	copy(syms, s.current)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.backend.Subscribe(ctx, syms); err != nil {
		// Non-fatal: the board keeps serving last-known data and the next
		// visibility change or reconnect re-issues the set.
		s.log.Warn("subscribe failed", "symbols", len(syms), "err", err)
		return
	}
	s.log.Debug("subscription replaced", "symbols", len(syms))
}
