package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eosim/internal/event"
	"eosim/internal/format"
)

// ErrEmptyResponse is returned when the model replies with no content.
// This happens intermittently; the right move is to try again.
var ErrEmptyResponse = errors.New("model returned an empty response")

const maxCompletionTokens = 2000

// OpenAIClient generates alert content through the OpenAI chat
// completions API. It implements Generator.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a client for the given API key and model.
// baseURL should include the version prefix (".../v1").
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate asks the model for an internal alert matching the event and
// decodes the JSON it returns.
func (c *OpenAIClient) Generate(ctx context.Context, ev event.Event) (*Record, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: UserPrompt(ev)},
		},
		ResponseFormat:      &responseFormat{Type: "json_object"},
		MaxCompletionTokens: maxCompletionTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling model API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response (HTTP %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("model API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	content := stripCodeFences(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	var rec Record
	if err := json.Unmarshal([]byte(content), &rec); err != nil {
		return nil, fmt.Errorf("parsing generated alert: %w (raw: %s)", err, format.Truncate(content, 300))
	}
	return &rec, nil
}

// stripCodeFences removes a markdown code block wrapper if the model
// added one despite the JSON response format.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
