package httpapi

import (
	"github.com/abhij1306/algotrading-sub001/internal/feed"
	"github.com/abhij1306/algotrading-sub001/internal/quote"
)

// QuotesResponse is the payload of GET /api/quotes.
type QuotesResponse struct {
	Quotes []quote.Quote `json:"quotes"`
}

// StatusResponse is the payload of GET /api/feed/status.
type StatusResponse struct {
	Feed feed.Status `json:"feed"`
}

// WatchlistResponse is the payload of GET /api/watchlist.
type WatchlistResponse struct {
	Symbols []string `json:"symbols"`
}

// VisibleRequest is the body of PUT /api/visible.
type VisibleRequest struct {
	Symbols []string `json:"symbols"`
}
