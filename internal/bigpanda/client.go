package bigpanda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Sender delivers one alert payload. The resolve flow and tests depend
// on this seam rather than on Client directly.
type Sender interface {
	Send(ctx context.Context, p Payload) error
}

// Client sends alert payloads to the BigPanda OIM alerts endpoint.
type Client struct {
	url        string
	orgToken   string
	appKey     string
	httpClient *http.Client
}

// NewClient creates a delivery client for the given alerts URL and
// credentials.
func NewClient(url, orgToken, appKey string, timeout time.Duration) *Client {
	return &Client{
		url:      url,
		orgToken: orgToken,
		appKey:   appKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send POSTs the payload. The Org Token rides both as a Bearer header
// and as the access_token query parameter; the app_key query parameter
// routes the alert to the right integration. Success is HTTP 200, 201,
// or 202; anything else returns an *APIError carrying the response body.
func (c *Client) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.orgToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("access_token", c.orgToken)
	q.Set("app_key", c.appKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending alert: %w", err)
	}
	defer resp.Body.Close()

	if !successStatus(resp.StatusCode) {
		return newAPIError(resp)
	}

	slog.Debug("alert delivered", "status", p.Status, "host", p.Host)
	return nil
}

// successStatus reports whether the alerts API accepted the payload.
func successStatus(code int) bool {
	switch code {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return true
	}
	return false
}

// APIError is a non-success response from the BigPanda API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bigpanda returned HTTP %d: %s", e.StatusCode, e.Body)
}

// maxErrBody bounds how much of an error response body is kept.
const maxErrBody = 500

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
