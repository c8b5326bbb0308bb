package quote

import (
	"math"
	"reflect"
	"testing"
)

func TestApplyLastWriteWins(t *testing.T) {
	b := NewBoard()
	b.SetVisible([]string{"TCS"})

	for _, price := range []float64{3500, 3501, 3499.5} {
		if !b.Apply(Quote{Symbol: "TCS", LastPrice: price, ChangePercent: 1}) {
			t.Fatalf("Apply(TCS @ %v) = false, want true", price)
		}
	}

	q, ok := b.Get("TCS")
	if !ok {
		t.Fatal("Get(TCS) not found after Apply")
	}
	if q.LastPrice != 3499.5 {
		t.Errorf("LastPrice = %v, want last written 3499.5", q.LastPrice)
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
}

func TestApplyDuplicateIdempotent(t *testing.T) {
	b := NewBoard()
	b.SetVisible([]string{"INFY"})

	q := Quote{Symbol: "INFY", LastPrice: 1500, ChangePercent: 0.67}
	b.Apply(q)
	b.Apply(q)

	got, _ := b.Get("INFY")
	if got.LastPrice != 1500 || got.ChangePercent != 0.67 {
		t.Errorf("quote after duplicate = %+v, want price 1500 pct 0.67", got)
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want 1", b.Len())
	}
}

func TestApplyRejectsNonVisible(t *testing.T) {
	b := NewBoard()
	b.SetVisible([]string{"TCS", "INFY"})

	if b.Apply(Quote{Symbol: "WIPRO", LastPrice: 250}) {
		t.Error("Apply(WIPRO) = true, want false (not visible)")
	}
	if _, ok := b.Get("WIPRO"); ok {
		t.Error("board contains WIPRO after rejected Apply")
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d, want 0", b.Len())
	}
}

func TestSetVisiblePrunes(t *testing.T) {
	b := NewBoard()
	b.SetVisible([]string{"TCS", "INFY"})
	b.Apply(Quote{Symbol: "TCS", LastPrice: 3500})
	b.Apply(Quote{Symbol: "INFY", LastPrice: 1500})

	b.SetVisible([]string{"INFY"})

	if _, ok := b.Get("TCS"); ok {
		t.Error("TCS still present after being removed from visible set")
	}
	if _, ok := b.Get("INFY"); !ok {
		t.Error("INFY missing after SetVisible kept it")
	}

	// A late update for the pruned symbol stays out.
	if b.Apply(Quote{Symbol: "TCS", LastPrice: 3510}) {
		t.Error("Apply(TCS) = true after prune, want false")
	}
}

func TestVisibleSorted(t *testing.T) {
	b := NewBoard()
	b.SetVisible([]string{"WIPRO", "TCS", "INFY", ""})

	got := b.Visible()
	want := []string{"INFY", "TCS", "WIPRO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Visible() = %v, want %v", got, want)
	}
}

func TestSnapshotSorted(t *testing.T) {
	b := NewBoard()
	b.SetVisible([]string{"TCS", "INFY"})
	b.Apply(Quote{Symbol: "TCS", LastPrice: 3500})
	b.Apply(Quote{Symbol: "INFY", LastPrice: 1500})

	snap := b.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(snap))
	}
	if snap[0].Symbol != "INFY" || snap[1].Symbol != "TCS" {
		t.Errorf("Snapshot order = [%s %s], want [INFY TCS]", snap[0].Symbol, snap[1].Symbol)
	}
}

func TestSubscribeReceivesMerged(t *testing.T) {
	b := NewBoard()
	b.SetVisible([]string{"TCS"})

	id, ch := b.Subscribe(4)
	defer b.Unsubscribe(id)

	b.Apply(Quote{Symbol: "TCS", LastPrice: 3500})
	b.Apply(Quote{Symbol: "WIPRO", LastPrice: 250}) // rejected, no event

	select {
	case q := <-ch:
		if q.Symbol != "TCS" || q.LastPrice != 3500 {
			t.Errorf("event = %+v, want TCS @ 3500", q)
		}
	default:
		t.Fatal("no event received for merged update")
	}

	select {
	case q := <-ch:
		t.Errorf("unexpected second event %+v (rejected update must not notify)", q)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBoard()
	id, ch := b.Subscribe(1)
	b.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}
}

func TestChangePercent(t *testing.T) {
	pct, ok := ChangePercent(3500, 3450)
	if !ok {
		t.Fatal("ChangePercent(3500, 3450) not ok")
	}
	if math.Abs(pct-1.449) > 0.001 {
		t.Errorf("ChangePercent(3500, 3450) = %v, want ≈1.449", pct)
	}

	if _, ok := ChangePercent(100, 0); ok {
		t.Error("ChangePercent with zero reference should not be ok")
	}
}
