// Package feed fetches current disruption events from the public
// observability feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"eosim/internal/event"
)

// Result is one fetch: the decoded events plus the feed's total count,
// which can exceed what the limit parameter let through.
type Result struct {
	Events     []event.Event
	TotalCount int
}

// Client polls the event feed.
type Client struct {
	url        string
	limit      int
	httpClient *http.Client
}

// New creates a feed client. limit caps how many events one fetch
// requests.
func New(url string, limit int, timeout time.Duration) *Client {
	return &Client{
		url:   url,
		limit: limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type summaryResponse struct {
	Alerts     []event.Event `json:"alerts"`
	TotalCount int           `json:"total_count"`
}

// Fetch retrieves the feed's current events.
func (c *Client) Fetch(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(c.limit))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetching events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	var parsed summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("decoding feed response: %w", err)
	}

	total := parsed.TotalCount
	if total == 0 {
		total = len(parsed.Alerts)
	}

	slog.Debug("feed fetched", "events", len(parsed.Alerts), "total", total)
	return Result{Events: parsed.Alerts, TotalCount: total}, nil
}
