// Package httpapi serves the terminal's local API: quote snapshots, feed
// status, the visible-set control, watchlist management, and a WebSocket
// fan-out of merged quote updates.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abhij1306/algotrading-sub001/internal/feed"
	"github.com/abhij1306/algotrading-sub001/internal/store"
	"github.com/abhij1306/algotrading-sub001/internal/symbols"
)

// Server serves the local terminal HTTP API.
type Server struct {
	feed      *feed.Feed
	watchlist store.WatchlistStore // nil when no sqlite path is configured
	hub       *Hub
	log       *slog.Logger
}

// NewServer creates a Server for the given feed. watchlist may be nil.
func NewServer(f *feed.Feed, watchlist store.WatchlistStore, log *slog.Logger) *Server {
	return &Server{
		feed:      f,
		watchlist: watchlist,
		hub:       NewHub(f.Board(), log.With("component", "hub")),
		log:       log,
	}
}

// Hub returns the WebSocket fan-out hub; callers start it with Run.
func (s *Server) Hub() *Hub {
	return s.hub
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quotes", s.handleQuotes)
	mux.HandleFunc("GET /api/feed/status", s.handleStatus)
	mux.HandleFunc("PUT /api/visible", s.handleSetVisible)
	mux.HandleFunc("GET /api/watchlist", s.handleGetWatchlist)
	mux.HandleFunc("PUT /api/watchlist/{symbol}", s.handleAddWatchlist)
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.handleRemoveWatchlist)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, QuotesResponse{Quotes: s.feed.Board().Snapshot()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{Feed: s.feed.Status()})
}

func (s *Server) handleSetVisible(w http.ResponseWriter, r *http.Request) {
	var req VisibleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.feed.SetVisible(req.Symbols)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeJSON(w, WatchlistResponse{Symbols: []string{}})
		return
	}

	syms, err := s.watchlist.List(r.Context())
	if err != nil {
		s.log.Error("listing watchlist", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list watchlist")
		return
	}
	if syms == nil {
		syms = []string{}
	}
	writeJSON(w, WatchlistResponse{Symbols: syms})
}

func (s *Server) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist not configured")
		return
	}

	symbol := symbols.Normalize(strings.ToUpper(r.PathValue("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}

	if err := s.watchlist.Add(r.Context(), symbol); err != nil {
		s.log.Error("adding to watchlist", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to add "+symbol)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	if s.watchlist == nil {
		writeError(w, http.StatusServiceUnavailable, "watchlist not configured")
		return
	}

	symbol := symbols.Normalize(strings.ToUpper(r.PathValue("symbol")))
	if err := s.watchlist.Remove(r.Context(), symbol); err != nil {
		s.log.Error("removing from watchlist", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to remove "+symbol)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
