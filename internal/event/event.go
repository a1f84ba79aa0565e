// Package event defines the external disruption event model and the
// eligibility filtering applied before alert generation.
package event

import (
	"strings"
	"time"
)

// Severity indicates the urgency an event was reported with.
type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMedium   Severity = "medium"
	SevLow      Severity = "low"
)

// Rank orders severities for display, most urgent first. Values the feed
// invents sort together with low.
func (s Severity) Rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case SevCritical:
		return 0
	case SevHigh:
		return 1
	case SevMedium:
		return 2
	default:
		return 3
	}
}

// Location describes where an event is occurring.
type Location struct {
	Description string `json:"description"`
}

// Event is a single disruption event as returned by the public
// observability feed. StartTime stays a raw string because the feed does
// not guarantee a parseable value.
type Event struct {
	AlertType     string   `json:"alert_type"`
	Severity      Severity `json:"severity"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Location      Location `json:"location"`
	StartTime     string   `json:"start_time"`
	IsActive      bool     `json:"is_active"`
	SourceSystem  string   `json:"source_system"`
	AffectedCount int      `json:"affected_count"`
}

// Type returns the alert type, or "unknown" when the feed omitted it.
func (e Event) Type() string {
	if e.AlertType == "" {
		return "unknown"
	}
	return e.AlertType
}

// Start parses the event's start time. ok is false when the value is
// absent or not a recognizable timestamp.
func (e Event) Start() (time.Time, bool) {
	if e.StartTime == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, e.StartTime); err == nil {
		return t, true
	}
	// Some feed entries omit the offset; treat those as UTC.
	if t, err := time.Parse("2006-01-02T15:04:05", e.StartTime); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
