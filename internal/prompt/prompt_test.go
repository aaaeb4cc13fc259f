package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestTextDefault(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewReader(strings.NewReader("\n  custom  \n"), &out)

	got, err := p.Text("Output file", "README.md")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "README.md" {
		t.Fatalf("empty answer should return default, got %q", got)
	}
	if !strings.Contains(out.String(), "Output file [README.md]: ") {
		t.Fatalf("prompt should show default, got %q", out.String())
	}

	got, err = p.Text("Output file", "README.md")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "custom" {
		t.Fatalf("expected trimmed answer, got %q", got)
	}
}

func TestTextRequiredRepeats(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewReader(strings.NewReader("\n\nmicrosoft/Phi-3.5-mini-instruct"), &out)
	got, err := p.Text("Base model ID", "")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "microsoft/Phi-3.5-mini-instruct" {
		t.Fatalf("unexpected answer %q", got)
	}
	if n := strings.Count(out.String(), "Base model ID: "); n != 3 {
		t.Fatalf("expected the question 3 times, got %d", n)
	}
}

func TestTextNoInput(t *testing.T) {
	t.Parallel()
	p := NewReader(strings.NewReader(""), io.Discard)
	if _, err := p.Text("Topology file", ""); !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}

	// A default still answers when input is exhausted.
	got, err := p.Text("Output file", "README.md")
	if err != nil || got != "README.md" {
		t.Fatalf("expected default at EOF, got %q, %v", got, err)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\ny\n", true},
		{"y", true},
	}
	for _, tc := range tests {
		got, err := NewReader(strings.NewReader(tc.input), io.Discard).Confirm("Vision model?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Confirm(%q): got %v want %v", tc.input, got, tc.want)
		}
	}

	if _, err := NewReader(strings.NewReader(""), io.Discard).Confirm("Vision model?"); !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput at EOF, got %v", err)
	}
}

func TestNewTerminalUsesTTYSeam(t *testing.T) {
	prev := stdinIsTTY
	stdinIsTTY = func() bool { return false }
	defer func() { stdinIsTTY = prev }()

	if NewTerminal().edit {
		t.Fatal("line editor should be off when stdin is not a terminal")
	}
}
