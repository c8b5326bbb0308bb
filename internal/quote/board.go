// Package quote holds the in-memory quote board: the latest price/change
// overlay for the currently visible symbols, independent of how any consumer
// orders or renders them. Stream ticks and REST poll rows merge through the
// same path, so readers never know which transport produced a value.
package quote

import (
	"sort"
	"sync"
	"time"
)

// Quote is the latest known state for one symbol. Keyed by bare ticker;
// last write wins.
type Quote struct {
	Symbol        string    `json:"symbol"`
	LastPrice     float64   `json:"last_price"`
	ChangePercent float64   `json:"change_percent"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChangePercent computes the percent move of last relative to ref. Returns
// ok=false when ref is not a usable reference price.
func ChangePercent(last, ref float64) (pct float64, ok bool) {
	if ref <= 0 {
		return 0, false
	}
	return (last - ref) / ref * 100, true
}

// Board owns the visible symbol set and the quote overlay for it, with
// pub/sub fan-out of merged updates. All methods are safe for concurrent
// use; each merge is atomic with respect to reads.
type Board struct {
	mu      sync.RWMutex
	visible map[string]struct{}
	quotes  map[string]Quote

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan Quote
}

// NewBoard creates an empty Board with no visible symbols.
func NewBoard() *Board {
	return &Board{
		visible: make(map[string]struct{}),
		quotes:  make(map[string]Quote),
		subs:    make(map[int]chan Quote),
	}
}

// SetVisible replaces the visible symbol set (bare tickers). Overlay entries
// for symbols no longer visible are pruned, so a late response for an old
// page cannot resurface.
func (b *Board) SetVisible(tickers []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.visible = make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		if t == "" {
			continue
		}
		b.visible[t] = struct{}{}
	}
	for sym := range b.quotes {
		if _, ok := b.visible[sym]; !ok {
			delete(b.quotes, sym)
		}
	}
}

// Visible returns the current visible set, sorted.
func (b *Board) Visible() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.visible))
	for sym := range b.visible {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// IsVisible reports whether the symbol is in the current visible set.
func (b *Board) IsVisible(symbol string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.visible[symbol]
	return ok
}

// Apply merges one update into the overlay. Updates for symbols outside the
// visible set are discarded (stale ticks, superseded poll responses).
// Returns whether the update was merged.
func (b *Board) Apply(q Quote) bool {
	if q.Symbol == "" {
		return false
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now()
	}

	b.mu.Lock()
	if _, ok := b.visible[q.Symbol]; !ok {
		b.mu.Unlock()
		return false
	}
	b.quotes[q.Symbol] = q
	b.mu.Unlock()

	// Notify subscribers (non-blocking send).
	b.subsMu.Lock()
	for _, ch := range b.subs {
		select {
		case ch <- q:
		default:
			// Slow subscriber, drop event.
		}
	}
	b.subsMu.Unlock()

	return true
}

// Get returns the quote for a symbol, if present.
func (b *Board) Get(symbol string) (Quote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[symbol]
	return q, ok
}

// Snapshot returns a copy of the overlay, sorted by symbol.
func (b *Board) Snapshot() []Quote {
	b.mu.RLock()
	out := make([]Quote, 0, len(b.quotes))
	for _, q := range b.quotes {
		out = append(out, q)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of symbols with a merged quote.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.quotes)
}

// Subscribe creates a new subscription channel for merged quote updates.
func (b *Board) Subscribe(bufSize int) (id int, ch <-chan Quote) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	id = b.nextSubID
	b.nextSubID++
	c := make(chan Quote, bufSize)
	b.subs[id] = c
	return id, c
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Board) Unsubscribe(id int) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}
