package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/backend"
	"github.com/abhij1306/algotrading-sub001/internal/quote"
)

func newTestFeed(t *testing.T, maxVisible int) *Feed {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return New(Options{
		Backend:      backend.NewClient(srv.URL, "", 0),
		Board:        quote.NewBoard(),
		PollInterval: time.Hour,
		Debounce:     5 * time.Millisecond,
		MaxVisible:   maxVisible,
		Logger:       slog.Default(),
	})
}

func TestSetVisibleNormalizesAndDedupes(t *testing.T) {
	f := newTestFeed(t, 50)

	f.SetVisible([]string{"NSE:TCS-EQ", "tcs", "INFY"})

	got := f.Board().Visible()
	want := []string{"INFY", "TCS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Visible() = %v, want %v", got, want)
	}
}

func TestSetVisibleCapsWindow(t *testing.T) {
	f := newTestFeed(t, 2)

	f.SetVisible([]string{"TCS", "INFY", "WIPRO", "HDFCBANK"})

	if got := len(f.Board().Visible()); got != 2 {
		t.Errorf("visible set size = %d, want capped at 2", got)
	}
}

func TestStatusNoStream(t *testing.T) {
	f := newTestFeed(t, 50)
	f.SetVisible([]string{"TCS"})

	st := f.Status()
	if st.State != "closed" {
		t.Errorf("State = %q, want closed when no stream is configured", st.State)
	}
	if st.Quotes != 0 {
		t.Errorf("Quotes = %d, want 0 before any merge", st.Quotes)
	}
	if !reflect.DeepEqual(st.Visible, []string{"TCS"}) {
		t.Errorf("Visible = %v, want [TCS]", st.Visible)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newTestFeed(t, 50)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
