package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/backend"
	"github.com/abhij1306/algotrading-sub001/internal/quote"
	"github.com/abhij1306/algotrading-sub001/internal/symbols"
	"github.com/abhij1306/algotrading-sub001/internal/util"
)

// Options configures a Feed.
type Options struct {
	Backend      *backend.Client
	StreamURL    string // empty disables the stream; the poller carries the feed alone
	StreamToken  string
	Board        *quote.Board
	PollInterval time.Duration
	Debounce     time.Duration
	MaxVisible   int
	Calendar     *util.TradingCalendar
	Logger       *slog.Logger
}

// Feed owns the full live-quote pipeline for one board: stream client,
// subscription manager, and fallback poller. Consumers drive it through
// SetVisible and read through the board.
type Feed struct {
	board      *quote.Board
	stream     *Stream // nil when no stream URL is configured
	subscriber *Subscriber
	poller     *Poller
	cal        *util.TradingCalendar
	maxVisible int
	log        *slog.Logger
}

// New wires a Feed from the given options.
func New(opts Options) *Feed {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	cal := opts.Calendar
	if cal == nil {
		cal = util.NewTradingCalendar()
	}

	f := &Feed{
		board:      opts.Board,
		cal:        cal,
		maxVisible: opts.MaxVisible,
		log:        log,
	}

	f.subscriber = NewSubscriber(opts.Backend, opts.Debounce, log.With("component", "subscriber"))

	if opts.StreamURL != "" {
		f.stream = NewStream(opts.StreamURL, opts.StreamToken, opts.Board, log.With("component", "stream"))
		f.stream.SetOnOpen(f.subscriber.Resend)
	}

	f.poller = NewPoller(
		opts.Backend,
		opts.Board,
		opts.PollInterval,
		f.State,
		cal.IsMarketOpen,
		log.With("component", "poller"),
	)

	return f
}

// Run starts the stream and poller and blocks until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	go f.poller.Run(ctx)

	if f.stream == nil {
		f.log.Info("no stream configured, running poll-only")
		<-ctx.Done()
		return ctx.Err()
	}
	return f.stream.Run(ctx)
}

// SetVisible replaces the visible symbol set. Input may be bare tickers or
// exchange-qualified ids; the set is normalized, deduplicated, and capped at
// the configured window size before the board and subscription are updated.
func (f *Feed) SetVisible(syms []string) {
	norm := symbols.NormalizeAll(syms)

	seen := make(map[string]struct{}, len(norm))
	tickers := norm[:0]
	for _, t := range norm {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}

	if f.maxVisible > 0 && len(tickers) > f.maxVisible {
		f.log.Warn("visible set truncated", "requested", len(tickers), "max", f.maxVisible)
		tickers = tickers[:f.maxVisible]
	}

	f.board.SetVisible(tickers)
	f.subscriber.Set(tickers)
}

// Board returns the quote board the feed maintains.
func (f *Feed) Board() *quote.Board {
	return f.board
}

// State returns the stream connection state; closed when no stream is
// configured, which keeps the poller permanently on.
func (f *Feed) State() ConnState {
	if f.stream == nil {
		return StateClosed
	}
	return f.stream.State()
}

// Status is the feed's externally visible condition, served by the local
// status endpoint.
type Status struct {
	State      string   `json:"state"`
	MarketOpen bool     `json:"market_open"`
	Polling    bool     `json:"polling"`
	Visible    []string `json:"visible"`
	Quotes     int      `json:"quotes"`
}

// Status reports the current connection state, market phase, and window.
func (f *Feed) Status() Status {
	return Status{
		State:      f.State().String(),
		MarketOpen: f.cal.IsMarketOpen(time.Now()),
		Polling:    f.poller.Active(),
		Visible:    f.board.Visible(),
		Quotes:     f.board.Len(),
	}
}
