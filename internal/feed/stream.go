package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abhij1306/algotrading-sub001/internal/quote"
	"github.com/abhij1306/algotrading-sub001/internal/symbols"
	"github.com/abhij1306/algotrading-sub001/internal/util"
)

func newDialBackoff() *util.Backoff {
	return util.NewBackoff(time.Second, 30*time.Second)
}

// tick is the wire shape of one stream update. Price fields are pointers so
// a missing field can be told apart from a zero.
type tick struct {
	Symbol    string   `json:"symbol"`
	Ltp       *float64 `json:"ltp"`
	OpenPrice *float64 `json:"open_price"`
	Chp       *float64 `json:"chp"`
}

// toQuote derives the board entry for a tick. ok is false for malformed
// ticks (no symbol, no price, or no usable change reference), which are
// dropped so the prior board value survives.
func (t tick) toQuote() (quote.Quote, bool) {
	if t.Symbol == "" || t.Ltp == nil {
		return quote.Quote{}, false
	}

	sym := symbols.Normalize(t.Symbol)

	if t.OpenPrice != nil {
		if pct, ok := quote.ChangePercent(*t.Ltp, *t.OpenPrice); ok {
			return quote.Quote{Symbol: sym, LastPrice: *t.Ltp, ChangePercent: pct}, true
		}
	}
	if t.Chp != nil {
		return quote.Quote{Symbol: sym, LastPrice: *t.Ltp, ChangePercent: *t.Chp}, true
	}
	return quote.Quote{}, false
}

// Stream maintains the WebSocket connection to the backend's live feed,
// merging each decoded tick into the board. Lifecycle:
// connecting → open → closed → connecting, with exponential backoff between
// redials and no terminal state.
type Stream struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	board  *quote.Board
	log    *slog.Logger

	state  atomic.Int32
	onOpen func()
}

// NewStream creates a Stream for the given WebSocket URL. token, when
// non-empty, is sent as a bearer Authorization header on the dial.
func NewStream(url, token string, board *quote.Board, log *slog.Logger) *Stream {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	s := &Stream{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		board:  board,
		log:    log,
	}
	s.state.Store(int32(StateClosed))
	return s
}

// State returns the current connection state.
func (s *Stream) State() ConnState {
	return ConnState(s.state.Load())
}

// SetOnOpen registers a callback invoked after each successful dial, before
// any ticks are read. The feed uses it to re-issue the current subscription.
func (s *Stream) SetOnOpen(fn func()) {
	s.onOpen = fn
}

// Run dials and reads the stream until ctx is cancelled, redialling with
// backoff on any failure.
func (s *Stream) Run(ctx context.Context) error {
	backoff := newDialBackoff()

	for {
		s.state.Store(int32(StateConnecting))

		conn, resp, err := s.dialer.DialContext(ctx, s.url, s.header)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			s.state.Store(int32(StateClosed))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay := backoff.Next()
			s.log.Warn("stream dial failed", "url", s.url, "retry_in", delay, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		s.state.Store(int32(StateOpen))
		backoff.Reset()
		s.log.Info("stream connected", "url", s.url)
		if s.onOpen != nil {
			s.onOpen()
		}

		err = s.readLoop(ctx, conn)
		conn.Close()
		s.state.Store(int32(StateClosed))

		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := backoff.Next()
		s.log.Warn("stream disconnected", "retry_in", delay, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// readLoop reads messages until the connection fails or ctx is cancelled.
func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// ReadMessage has no context support; closing the conn unblocks it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.handleMessage(data)
	}
}

// handleMessage decodes one message, which may carry a single tick or a
// batch, and merges each well-formed tick into the board.
func (s *Stream) handleMessage(data []byte) {
	var ticks []tick
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &ticks); err != nil {
			s.log.Debug("dropping undecodable stream message", "err", err)
			return
		}
	} else {
		var t tick
		if err := json.Unmarshal(data, &t); err != nil {
			s.log.Debug("dropping undecodable stream message", "err", err)
			return
		}
		ticks = append(ticks, t)
	}

	for _, t := range ticks {
		q, ok := t.toQuote()
		if !ok {
			s.log.Debug("dropping malformed tick", "symbol", t.Symbol)
			continue
		}
		s.board.Apply(q)
	}
}
