package event

import (
	"sort"
	"strings"
)

// TypeSummary aggregates the events of one alert type for the selection
// menu. Example holds the title of the first event seen for the type.
type TypeSummary struct {
	Type     string
	Count    int
	Critical int
	High     int
	Medium   int
	Low      int
	Example  string
}

// Summarize groups events by alert type, ordered by descending count.
// Ties keep first-seen order. Severities outside the four known levels
// contribute to the count but not to the breakdown columns; a missing
// severity counts as low.
func Summarize(events []Event) []TypeSummary {
	index := make(map[string]int)
	var out []TypeSummary
	for _, e := range events {
		typ := e.Type()
		i, ok := index[typ]
		if !ok {
			i = len(out)
			index[typ] = i
			out = append(out, TypeSummary{Type: typ, Example: e.Title})
		}
		s := &out[i]
		s.Count++
		switch Severity(strings.ToLower(string(e.Severity))) {
		case SevCritical:
			s.Critical++
		case SevHigh:
			s.High++
		case SevMedium:
			s.Medium++
		case SevLow, Severity(""):
			s.Low++
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
