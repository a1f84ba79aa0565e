package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eosim/internal/event"
)

func TestStringListUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"array", `["AWS Cloud", "Core Switching"]`, []string{"AWS Cloud", "Core Switching"}},
		{"bare string", `"AWS Cloud"`, []string{"AWS Cloud"}},
		{"empty array", `[]`, []string{}},
		{"null", `null`, nil},
		{"number", `42`, nil},
		{"mixed array", `["ok", 3]`, nil},
	}
	for _, tt := range tests {
		var got StringList
		if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got[%d] = %q, want %q", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestUserPrompt(t *testing.T) {
	ev := event.Event{
		AlertType:     "power_outage",
		Severity:      "critical",
		Title:         "Grid failure in Dallas",
		Description:   "Widespread outage reported",
		Location:      event.Location{Description: "Dallas, TX"},
		StartTime:     "2026-03-10T09:00:00Z",
		SourceSystem:  "poweroutage.us",
		AffectedCount: 12500,
	}

	prompt := UserPrompt(ev)

	for _, want := range []string{
		"Type: power_outage",
		"Title: Grid failure in Dallas",
		"Severity: critical",
		"Location: Dallas, TX",
		"Start Time: 2026-03-10T09:00:00Z",
		"Source: poweroutage.us",
		"Affected Count: 12,500",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestUserPromptDefaults(t *testing.T) {
	prompt := UserPrompt(event.Event{})

	for _, want := range []string{
		"Type: unknown",
		"Title: N/A",
		"Severity: unknown",
		"Location: Unknown location",
		"Affected Count: N/A",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// fakeOpenAI returns a server that responds with the given message
// content, and records the last decoded request.
func fakeOpenAI(t *testing.T, content string, gotReq *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if gotReq != nil {
			if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerate(t *testing.T) {
	generated := `{
		"host": "us-south-dal-db-01.corp.internal",
		"check": "database_cluster_health",
		"description": "UPS battery backup activated.",
		"service": "Core Infrastructure",
		"environment": "production",
		"known_dependencies": ["AWS Cloud", "Backup Power Grid"],
		"business_owner": "R. Dalton"
	}`

	var gotReq chatRequest
	srv := fakeOpenAI(t, generated, &gotReq)
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "gpt-5-mini", srv.URL, 5*time.Second)
	rec, err := client.Generate(context.Background(), event.Event{Title: "Grid failure"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if rec.Host != "us-south-dal-db-01.corp.internal" {
		t.Errorf("Host = %q", rec.Host)
	}
	if rec.Check != "database_cluster_health" {
		t.Errorf("Check = %q", rec.Check)
	}
	if len(rec.KnownDependencies) != 2 {
		t.Errorf("KnownDependencies = %v", rec.KnownDependencies)
	}

	if gotReq.Model != "gpt-5-mini" {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
		t.Errorf("request response_format = %+v", gotReq.ResponseFormat)
	}
	if gotReq.MaxCompletionTokens != 2000 {
		t.Errorf("request max_completion_tokens = %d", gotReq.MaxCompletionTokens)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("request messages = %d roles", len(gotReq.Messages))
	}
}

func TestGenerateFencedContent(t *testing.T) {
	srv := fakeOpenAI(t, "```json\n{\"host\": \"edge-01.corp.internal\"}\n```", nil)
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "gpt-5-mini", srv.URL, 5*time.Second)
	rec, err := client.Generate(context.Background(), event.Event{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rec.Host != "edge-01.corp.internal" {
		t.Errorf("Host = %q", rec.Host)
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := fakeOpenAI(t, "   ", nil)
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "gpt-5-mini", srv.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), event.Event{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "gpt-5-mini", srv.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), event.Event{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-bad", "gpt-5-mini", srv.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), event.Event{})
	if err == nil || !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("err = %v, want API error message", err)
	}
}

func TestGenerateBadJSON(t *testing.T) {
	srv := fakeOpenAI(t, "here is your alert: {not json", nil)
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "gpt-5-mini", srv.URL, 5*time.Second)
	_, err := client.Generate(context.Background(), event.Event{})
	if err == nil || !strings.Contains(err.Error(), "parsing generated alert") {
		t.Errorf("err = %v, want parse error", err)
	}
}
