package event

import (
	"sort"
	"time"
)

// FilterStats counts events Filter excluded by start time.
type FilterStats struct {
	Future int
	Stale  int
}

// Filter returns the events eligible for alert generation: active events
// whose start time is neither in the future nor older than maxAge relative
// to now. Events with an absent or unparseable start time are kept, since
// excluding them would hide real ongoing incidents.
func Filter(events []Event, now time.Time, maxAge time.Duration) ([]Event, FilterStats) {
	var stats FilterStats
	cutoff := now.Add(-maxAge)
	eligible := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.IsActive {
			continue
		}
		if st, ok := e.Start(); ok {
			if st.After(now) {
				stats.Future++
				continue
			}
			if st.Before(cutoff) {
				stats.Stale++
				continue
			}
		}
		eligible = append(eligible, e)
	}
	return eligible, stats
}

// SortForDisplay orders events in place by severity (most urgent first),
// then by raw start time string. The sort is stable.
func SortForDisplay(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ri, rj := events[i].Severity.Rank(), events[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return events[i].StartTime < events[j].StartTime
	})
}

// FilterByTypes keeps only events whose alert type is one of types.
func FilterByTypes(events []Event, types []string) []Event {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if want[e.Type()] {
			out = append(out, e)
		}
	}
	return out
}
