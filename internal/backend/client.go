// Package backend is the REST client for the trading backend that fronts
// the exchange: subscription management for the live stream and the quote
// snapshot endpoint the fallback poller uses.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abhij1306/algotrading-sub001/internal/util"
)

// Client provides access to the backend HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *util.RateLimiter // nil when no quota is configured
}

// NewClient creates a backend API client. ratePerMin caps outgoing calls
// when positive.
func NewClient(baseURL, token string, ratePerMin int) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if ratePerMin > 0 {
		c.limiter = util.NewRateLimiter(ratePerMin)
	}
	return c
}

// LiveQuote is one row of the quote snapshot endpoint.
type LiveQuote struct {
	Ltp       float64 `json:"ltp"`
	PrevClose float64 `json:"prev_close"`
	ChangePct float64 `json:"change_pct"`
}

type liveQuotesResponse struct {
	Quotes map[string]LiveQuote `json:"quotes"`
}

type subscribeRequest struct {
	Symbols []string `json:"symbols"`
}

// Subscribe replaces the backend's streamed symbol set with the given
// exchange-qualified list. The response body is not consumed beyond the
// status code; the call is fire-and-forget for the caller.
func (c *Client) Subscribe(ctx context.Context, symbols []string) error {
	body, err := json.Marshal(subscribeRequest{Symbols: symbols})
	if err != nil {
		return fmt.Errorf("encoding subscribe request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/websocket/subscribe", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("subscribe call: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("subscribe call: unexpected status %s", resp.Status)
	}
	return nil
}

// LiveQuotes fetches the current quote snapshot for the given
// exchange-qualified symbols. Keys in the returned map are whatever the
// backend used; callers normalize them before merging.
func (c *Client) LiveQuotes(ctx context.Context, symbols []string) (map[string]LiveQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))

	req, err := c.newRequest(ctx, http.MethodGet, "/api/quotes/live?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("quotes call: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quotes call: unexpected status %s", resp.Status)
	}

	var out liveQuotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding quotes response: %w", err)
	}
	return out.Quotes, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return c.httpClient.Do(req)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
