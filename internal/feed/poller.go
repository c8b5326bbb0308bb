package feed

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/backend"
	"github.com/abhij1306/algotrading-sub001/internal/quote"
	"github.com/abhij1306/algotrading-sub001/internal/symbols"
)

// QuoteFetcher is the slice of the backend client the poller needs.
type QuoteFetcher interface {
	LiveQuotes(ctx context.Context, symbols []string) (map[string]backend.LiveQuote, error)
}

// Poller keeps the board fresh over REST whenever live ticks cannot: while
// the stream is not open, or outside market hours when the stream is silent.
// Rows merge through the same board path as ticks, so the read side is
// connection-agnostic. While the stream is open during market hours the
// poller yields entirely to live ticks.
type Poller struct {
	fetch      QuoteFetcher
	board      *quote.Board
	interval   time.Duration
	state      func() ConnState
	marketOpen func(time.Time) bool
	now        func() time.Time
	log        *slog.Logger

	active atomic.Bool
}

// NewPoller creates a Poller gated on the given state and market-hours
// functions.
func NewPoller(fetch QuoteFetcher, board *quote.Board, interval time.Duration, state func() ConnState, marketOpen func(time.Time) bool, log *slog.Logger) *Poller {
	return &Poller{
		fetch:      fetch,
		board:      board,
		interval:   interval,
		state:      state,
		marketOpen: marketOpen,
		now:        time.Now,
		log:        log,
	}
}

// Active reports whether the last scheduled invocation actually polled.
func (p *Poller) Active() bool {
	return p.active.Load()
}

// Run polls on a fixed interval until ctx is cancelled. The gate is checked
// at each firing, so a stream that opens suppresses the very next
// invocation, and a stream that drops resumes polling within one interval.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll performs one gated polling pass.
func (p *Poller) poll(ctx context.Context) {
	if p.state() == StateOpen && p.marketOpen(p.now()) {
		p.active.Store(false)
		return
	}
	p.active.Store(true)

	tickers := p.board.Visible()
	if len(tickers) == 0 {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	rows, err := p.fetch.LiveQuotes(cctx, symbols.QualifyAll(tickers))
	if err != nil {
		// Prior board values stay put; the next interval retries.
		p.log.Warn("poll failed", "symbols", len(tickers), "err", err)
		return
	}

	merged := 0
	for sym, row := range rows {
		q, ok := pollQuote(sym, row)
		if !ok {
			continue
		}
		if p.board.Apply(q) {
			merged++
		}
	}
	p.log.Debug("poll merged", "fetched", len(rows), "merged", merged)
}

// pollQuote derives the board entry for one snapshot row, preferring the
// backend's own change_pct and falling back to prev_close arithmetic.
func pollQuote(sym string, row backend.LiveQuote) (quote.Quote, bool) {
	if row.Ltp <= 0 {
		return quote.Quote{}, false
	}

	pct := row.ChangePct
	if pct == 0 {
		if p, ok := quote.ChangePercent(row.Ltp, row.PrevClose); ok {
			pct = p
		}
	}

	return quote.Quote{
		Symbol:        symbols.Normalize(sym),
		LastPrice:     row.Ltp,
		ChangePercent: pct,
	}, true
}
