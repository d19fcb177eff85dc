package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter reads answers from an arbitrary reader so the retry policy is
// testable without a terminal. All prompts are bounded: after the attempt
// budget is spent the caller gets an error and decides what to skip.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// ErrAttemptsExhausted is returned when every attempt failed validation.
var ErrAttemptsExhausted = fmt.Errorf("no valid answer within the attempt budget")

// Ask prompts with label until validate accepts the (trimmed) answer or the
// attempt budget runs out. A nil validate accepts anything, including "".
func (p *Prompter) Ask(label string, validate func(string) error, attempts int) (string, error) {
	for i := 0; i < attempts; i++ {
		fmt.Fprintf(p.out, "%s: ", label)
		if !p.in.Scan() {
			return "", io.EOF
		}
		answer := strings.TrimSpace(p.in.Text())
		if validate == nil {
			return answer, nil
		}
		if err := validate(answer); err != nil {
			fmt.Fprintf(p.out, "  %v\n", err)
			continue
		}
		return answer, nil
	}
	return "", ErrAttemptsExhausted
}

// Confirm asks a yes/no question. Empty input picks def.
func (p *Prompter) Confirm(label string, def bool) bool {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", label, hint)
	if !p.in.Scan() {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(p.in.Text())) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// Select presents a numbered menu and returns the chosen index. def is
// pre-selected and picked on empty input. Out-of-range or non-numeric
// answers burn an attempt.
func (p *Prompter) Select(label string, options []string, def int, attempts int) (int, error) {
	fmt.Fprintln(p.out, label)
	for i, opt := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", marker, i+1, opt)
	}
	pick, err := p.Ask("choice", func(s string) error {
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(options) {
			return fmt.Errorf("enter a number between 1 and %d", len(options))
		}
		return nil
	}, attempts)
	if err != nil {
		return def, err
	}
	if pick == "" {
		return def, nil
	}
	n, _ := strconv.Atoi(pick)
	return n - 1, nil
}
