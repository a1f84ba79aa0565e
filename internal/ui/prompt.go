// Package ui renders the interactive console surface: prompts, menus,
// and plain-text tables.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads interactive answers from an input stream and echoes
// prompts to an output stream.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter wraps the given streams, normally os.Stdin and os.Stdout.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints the label and returns the trimmed answer. An empty answer
// selects def. Closed input is reported as an error so callers can
// treat it as a cancel.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question. An empty answer selects def, and
// anything that is not a recognizable yes or no also falls back to def.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	answer, err := p.Ask(fmt.Sprintf("%s [%s]", label, hint), "")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return def, nil
}

// Choose re-prompts until the answer matches one of choices. An empty
// answer selects def.
func (p *Prompter) Choose(label string, choices []string, def string) (string, error) {
	for {
		answer, err := p.Ask(label, def)
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if answer == c {
				return answer, nil
			}
		}
		fmt.Fprintf(p.out, "Please choose one of: %s\n", strings.Join(choices, ", "))
	}
}
