package event

import (
	"testing"
	"time"
)

var filterNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestFilter(t *testing.T) {
	maxAge := 15 * time.Hour
	events := []Event{
		{Title: "recent", IsActive: true, StartTime: "2026-03-10T09:00:00Z"},
		{Title: "inactive", IsActive: false, StartTime: "2026-03-10T09:00:00Z"},
		{Title: "future", IsActive: true, StartTime: "2026-03-10T13:00:00Z"},
		{Title: "stale", IsActive: true, StartTime: "2026-03-09T10:00:00Z"},
		{Title: "garbled", IsActive: true, StartTime: "ongoing"},
		{Title: "no-start", IsActive: true},
		{Title: "at-now", IsActive: true, StartTime: "2026-03-10T12:00:00Z"},
		{Title: "at-cutoff", IsActive: true, StartTime: "2026-03-09T21:00:00Z"},
	}

	eligible, stats := Filter(events, filterNow, maxAge)

	want := []string{"recent", "garbled", "no-start", "at-now", "at-cutoff"}
	if len(eligible) != len(want) {
		t.Fatalf("Filter kept %d events, want %d", len(eligible), len(want))
	}
	for i, title := range want {
		if eligible[i].Title != title {
			t.Errorf("eligible[%d] = %q, want %q", i, eligible[i].Title, title)
		}
	}
	if stats.Future != 1 {
		t.Errorf("Future = %d, want 1", stats.Future)
	}
	if stats.Stale != 1 {
		t.Errorf("Stale = %d, want 1", stats.Stale)
	}
}

func TestFilterEmpty(t *testing.T) {
	eligible, stats := Filter(nil, filterNow, 15*time.Hour)
	if len(eligible) != 0 || stats.Future != 0 || stats.Stale != 0 {
		t.Errorf("Filter(nil) = %v, %+v, want empty", eligible, stats)
	}
}

func TestSortForDisplay(t *testing.T) {
	events := []Event{
		{Title: "c-late", Severity: "critical", StartTime: "2026-03-10T11:00:00Z"},
		{Title: "low", Severity: "low", StartTime: "2026-03-10T01:00:00Z"},
		{Title: "high", Severity: "high", StartTime: "2026-03-10T02:00:00Z"},
		{Title: "c-early", Severity: "critical", StartTime: "2026-03-10T03:00:00Z"},
		{Title: "mystery", Severity: "glitch", StartTime: "2026-03-10T00:30:00Z"},
	}

	SortForDisplay(events)

	want := []string{"c-early", "c-late", "high", "mystery", "low"}
	for i, title := range want {
		if events[i].Title != title {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Title, title)
		}
	}
}

func TestFilterByTypes(t *testing.T) {
	events := []Event{
		{AlertType: "power_outage", Title: "a"},
		{AlertType: "fiber_cut", Title: "b"},
		{AlertType: "power_outage", Title: "c"},
		{Title: "untyped"},
	}

	got := FilterByTypes(events, []string{"power_outage", "unknown"})
	want := []string{"a", "c", "untyped"}
	if len(got) != len(want) {
		t.Fatalf("FilterByTypes kept %d events, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Title, title)
		}
	}

	if out := FilterByTypes(events, nil); len(out) != 0 {
		t.Errorf("FilterByTypes with no types kept %d events, want 0", len(out))
	}
}
