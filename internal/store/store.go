// Package store defines storage interfaces for the feed engine's optional
// persistence: the user's watchlist and the per-day tick history written by
// the session recorder.
package store

import (
	"context"
	"time"
)

// WatchlistStore persists the set of symbols the user pinned to the
// terminal. Symbols are bare tickers.
type WatchlistStore interface {
	// Add inserts a symbol into the watchlist; adding an existing symbol is
	// a no-op.
	Add(ctx context.Context, symbol string) error

	// Remove deletes a symbol from the watchlist.
	Remove(ctx context.Context, symbol string) error

	// List returns all watchlist symbols, sorted.
	List(ctx context.Context) ([]string, error)
}

// TickStore persists and retrieves merged quote updates.
type TickStore interface {
	// WriteTicks persists a batch of tick records.
	WriteTicks(ctx context.Context, ticks []TickRecord) error

	// ReadTicks returns the records for a symbol on a given trading day.
	ReadTicks(ctx context.Context, symbol string, day time.Time) ([]TickRecord, error)
}

// TickRecord is one merged quote update as stored on disk.
type TickRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Price     float64 `parquet:"price"`
	ChangePct float64 `parquet:"change_pct"`
}
