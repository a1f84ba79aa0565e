package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection is the parsed answer to a numbered-list prompt.
type Selection struct {
	All     bool
	Quit    bool
	Indices []int
}

// ParseSelection interprets an answer to a numbered-list prompt: "all"
// selects everything, q/quit/exit/back cancels, anything else is a
// comma-separated list of entry numbers. Out-of-range numbers are the
// caller's problem; a non-numeric entry is an error.
func ParseSelection(raw string) (Selection, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch s {
	case "all":
		return Selection{All: true}, nil
	case "q", "quit", "exit", "back":
		return Selection{Quit: true}, nil
	}

	var sel Selection
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Selection{}, fmt.Errorf("not a number: %q", part)
		}
		sel.Indices = append(sel.Indices, n)
	}
	return sel, nil
}
