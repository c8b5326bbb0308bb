package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/quote"
)

// Recorder subscribes to a quote board and appends every merged update to a
// TickStore in periodic batches. It is an audit artifact for replaying a
// session; the board itself remains the source of truth for live reads.
type Recorder struct {
	store    TickStore
	board    *quote.Board
	interval time.Duration
	log      *slog.Logger
}

// NewRecorder creates a Recorder flushing to the store every interval.
func NewRecorder(store TickStore, board *quote.Board, interval time.Duration, log *slog.Logger) *Recorder {
	return &Recorder{
		store:    store,
		board:    board,
		interval: interval,
		log:      log,
	}
}

// Run buffers board updates and flushes them until ctx is cancelled. A
// final flush drains whatever is buffered on shutdown.
func (r *Recorder) Run(ctx context.Context) {
	id, ch := r.board.Subscribe(4096)
	defer r.board.Unsubscribe(id)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var buf []TickRecord
	for {
		select {
		case <-ctx.Done():
			r.flush(buf)
			return
		case q := <-ch:
			buf = append(buf, TickRecord{
				Symbol:    q.Symbol,
				Timestamp: q.UpdatedAt.UnixMilli(),
				Price:     q.LastPrice,
				ChangePct: q.ChangePercent,
			})
		case <-ticker.C:
			r.flush(buf)
			buf = buf[:0]
		}
	}
}

func (r *Recorder) flush(buf []TickRecord) {
	if len(buf) == 0 {
		return
	}
	// Shutdown and disk writes must not be tied to the feed's lifecycle.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.store.WriteTicks(ctx, buf); err != nil {
		r.log.Warn("flushing tick records failed", "records", len(buf), "err", err)
		return
	}
	r.log.Debug("tick records flushed", "records", len(buf))
}
