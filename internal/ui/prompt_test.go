package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestAsk_RetriesUntilValid(t *testing.T) {
	in := strings.NewReader("bad\nworse\ngood\n")
	var out bytes.Buffer
	p := NewPrompter(in, &out)

	got, err := p.Ask("value", func(s string) error {
		if s != "good" {
			return fmt.Errorf("try again")
		}
		return nil
	}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "good" {
		t.Fatalf("expected %q, got %q", "good", got)
	}
}

func TestAsk_ExhaustsBudget(t *testing.T) {
	in := strings.NewReader("a\nb\nc\nd\ne\nf\n")
	p := NewPrompter(in, &bytes.Buffer{})

	_, err := p.Ask("value", func(string) error { return fmt.Errorf("no") }, 3)
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
}

func TestSelect_DefaultOnEmptyInput(t *testing.T) {
	p := NewPrompter(strings.NewReader("\n"), &bytes.Buffer{})
	got, err := p.Select("pick", []string{"a", "b", "c"}, 1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected default index 1, got %d", got)
	}
}

func TestSelect_RejectsOutOfRange(t *testing.T) {
	p := NewPrompter(strings.NewReader("9\n0\n2\n"), &bytes.Buffer{})
	got, err := p.Select("pick", []string{"a", "b", "c"}, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
}

func TestConfirm_Defaults(t *testing.T) {
	if !NewPrompter(strings.NewReader("\n"), &bytes.Buffer{}).Confirm("ok?", true) {
		t.Fatal("empty input should pick the default (yes)")
	}
	if NewPrompter(strings.NewReader("n\n"), &bytes.Buffer{}).Confirm("ok?", true) {
		t.Fatal("explicit no must win over the default")
	}
}

func TestLogger_MirrorsWithoutColor(t *testing.T) {
	var term bytes.Buffer
	l := NewLogger(&term)
	path := t.TempDir() + "/out.log"
	if err := l.MirrorTo(path); err != nil {
		t.Fatal(err)
	}
	l.Warn("watch out %d", 7)
	l.Close()

	if !strings.Contains(term.String(), "[WARN]") || !strings.Contains(term.String(), "watch out 7") {
		t.Fatalf("terminal output missing level or message: %q", term.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[WARN] watch out 7\n" {
		t.Fatalf("mirror should be plain text, got %q", data)
	}
}
