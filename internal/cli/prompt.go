package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/me/busdesk/internal/rowaction"
)

// terminalPrompter asks row-action questions on the terminal.
type terminalPrompter interface {
	rowaction.Prompter
	rowaction.Confirmer
	// ReadLine reads one command line. ok is false on Ctrl-C or EOF.
	ReadLine(prompt string) (line string, ok bool, err error)
	Close() error
}

// newPrompter is replaced in tests.
var newPrompter = func(out io.Writer) terminalPrompter {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	return &linerPrompter{state: st, out: out}
}

type linerPrompter struct {
	state   *liner.State
	out     io.Writer
	choices []rowaction.Choice
}

// Prompt shows the question with the current value pre-filled. Ctrl-C or
// EOF cancels. For choice questions the answer may be the choice's number.
func (p *linerPrompter) Prompt(ctx context.Context, q rowaction.Question) (rowaction.Answer, error) {
	if err := ctx.Err(); err != nil {
		return rowaction.Answer{}, err
	}
	if q.Title != "" {
		fmt.Fprintln(p.out, q.Title)
	}
	p.choices = q.Choices
	for i, c := range q.Choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, choiceText(c))
	}
	p.state.SetCompleter(p.complete)

	line, err := p.state.PromptWithSuggestion(q.Label+" ", q.Current, -1)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return rowaction.Answer{}, nil
	}
	if err != nil {
		return rowaction.Answer{}, fmt.Errorf("read answer: %w", err)
	}
	line = pickChoice(strings.TrimSpace(line), q.Choices)
	p.state.AppendHistory(line)
	return rowaction.Answer{Value: line, OK: true}, nil
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (p *linerPrompter) Confirm(ctx context.Context, q rowaction.Question) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if q.Label != "" {
		fmt.Fprintln(p.out, q.Label)
	}
	line, err := p.state.Prompt(q.Title + " [y/N] ")
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read answer: %w", err)
	}
	return isYes(line), nil
}

func (p *linerPrompter) ReadLine(prompt string) (string, bool, error) {
	p.choices = nil
	line, err := p.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read command: %w", err)
	}
	if line = strings.TrimSpace(line); line != "" {
		p.state.AppendHistory(line)
	}
	return line, true, nil
}

func (p *linerPrompter) Close() error {
	return p.state.Close()
}

func (p *linerPrompter) complete(line string) []string {
	var out []string
	for _, c := range p.choices {
		if strings.HasPrefix(c.Value, line) {
			out = append(out, c.Value)
		}
	}
	return out
}

func choiceText(c rowaction.Choice) string {
	if c.Label == "" || c.Label == c.Value {
		return c.Value
	}
	return c.Label + " (" + c.Value + ")"
}

// pickChoice maps a 1-based choice number to its value unless the answer
// already is a choice value.
func pickChoice(answer string, choices []rowaction.Choice) string {
	for _, c := range choices {
		if c.Value == answer {
			return answer
		}
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1].Value
	}
	return answer
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
