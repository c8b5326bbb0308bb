package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/quote"
)

func TestWatchlistRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feed.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	for _, sym := range []string{"TCS", "INFY", "TCS"} { // duplicate add is a no-op
		if err := s.Add(ctx, sym); err != nil {
			t.Fatalf("Add(%s) returned error: %v", sym, err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	want := []string{"INFY", "TCS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}

	if err := s.Remove(ctx, "TCS"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	got, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"INFY"}) {
		t.Errorf("List after Remove = %v, want [INFY]", got)
	}
}

func TestWatchlistEmptySymbol(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feed.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	defer s.Close()

	if err := s.Add(context.Background(), ""); err == nil {
		t.Error("Add(\"\") should return error")
	}
}

func TestParquetTickRoundTrip(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	ts := day.Add(10 * time.Hour)

	ticks := []TickRecord{
		{Symbol: "TCS", Timestamp: ts.UnixMilli(), Price: 3500, ChangePct: 1.45},
		{Symbol: "TCS", Timestamp: ts.Add(time.Second).UnixMilli(), Price: 3501, ChangePct: 1.48},
	}
	if err := s.WriteTicks(ctx, ticks); err != nil {
		t.Fatalf("WriteTicks returned error: %v", err)
	}

	got, err := s.ReadTicks(ctx, "TCS", day)
	if err != nil {
		t.Fatalf("ReadTicks returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadTicks returned %d records, want 2", len(got))
	}
	if got[0].Price != 3500 || got[1].Price != 3501 {
		t.Errorf("records = %+v, want prices 3500 then 3501", got)
	}
}

func TestParquetMergePrefersIncoming(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	day := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	ts := day.Add(10 * time.Hour).UnixMilli()

	if err := s.WriteTicks(ctx, []TickRecord{{Symbol: "TCS", Timestamp: ts, Price: 3500}}); err != nil {
		t.Fatalf("WriteTicks returned error: %v", err)
	}
	// Same (symbol, timestamp) with a corrected price.
	if err := s.WriteTicks(ctx, []TickRecord{{Symbol: "TCS", Timestamp: ts, Price: 3505}}); err != nil {
		t.Fatalf("WriteTicks returned error: %v", err)
	}

	got, err := s.ReadTicks(ctx, "TCS", day)
	if err != nil {
		t.Fatalf("ReadTicks returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ReadTicks returned %d records, want 1 after dedup", len(got))
	}
	if got[0].Price != 3505 {
		t.Errorf("Price = %v, want incoming 3505", got[0].Price)
	}
}

func TestReadTicksMissingDay(t *testing.T) {
	s := NewParquetStore(t.TempDir())

	got, err := s.ReadTicks(context.Background(), "TCS", time.Now())
	if err != nil {
		t.Fatalf("ReadTicks returned error for missing file: %v", err)
	}
	if got != nil {
		t.Errorf("ReadTicks = %v, want nil for missing file", got)
	}
}

func TestRecorderFlushesOnShutdown(t *testing.T) {
	dir := t.TempDir()
	pstore := NewParquetStore(dir)
	board := quote.NewBoard()
	board.SetVisible([]string{"TCS"})

	rec := NewRecorder(pstore, board, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	// Give the recorder a moment to subscribe before publishing.
	time.Sleep(20 * time.Millisecond)
	now := time.Now()
	board.Apply(quote.Quote{Symbol: "TCS", LastPrice: 3500, ChangePercent: 1.45, UpdatedAt: now})

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Recorder did not stop after cancel")
	}

	got, err := pstore.ReadTicks(context.Background(), "TCS", now)
	if err != nil {
		t.Fatalf("ReadTicks returned error: %v", err)
	}
	if len(got) != 1 || got[0].Price != 3500 {
		t.Errorf("recorded ticks = %+v, want one TCS @ 3500", got)
	}
}
