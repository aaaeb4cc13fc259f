// Package prompt asks an operator for line input and yes/no answers.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoInput is returned when input ends before an answer is given.
var ErrNoInput = errors.New("prompt: no input")

// ErrInterrupted is returned when the operator presses Ctrl+C at a prompt.
var ErrInterrupted = errors.New("prompt: interrupted")

// Prompter reads answers from an operator. Calls block until a line is read.
type Prompter interface {
	// Text asks for a line. An empty answer returns def; when def is empty
	// the question is repeated until something is entered.
	Text(message, def string) (string, error)
	// Confirm asks a yes/no question. An empty answer means no.
	Confirm(message string) (bool, error)
}

// stdinIsTTY is a small seam for tests.
var stdinIsTTY = isTTY

// Terminal prompts on out and reads answers from in. When in is a terminal
// on linux, lines are read with a small line editor.
type Terminal struct {
	in   *bufio.Reader
	out  io.Writer
	edit bool
}

// NewTerminal prompts on stderr and reads stdin.
func NewTerminal() *Terminal {
	t := NewReader(os.Stdin, os.Stderr)
	t.edit = stdinIsTTY()
	return t
}

// NewReader prompts on out and reads plain lines from in.
func NewReader(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Text(message, def string) (string, error) {
	p := message
	if def != "" {
		p += " [" + def + "]"
	}
	p += ": "

	for {
		line, err := t.readLine(p)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimSpace(line)
		switch {
		case line != "":
			return line, nil
		case def != "":
			return def, nil
		case errors.Is(err, io.EOF):
			return "", fmt.Errorf("%w for %q", ErrNoInput, message)
		}
	}
}

func (t *Terminal) Confirm(message string) (bool, error) {
	p := message + " [y/N]: "
	for {
		line, err := t.readLine(p)
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "":
			if errors.Is(err, io.EOF) {
				return false, fmt.Errorf("%w for %q", ErrNoInput, message)
			}
			return false, nil
		default:
			_, _ = fmt.Fprintf(t.out, "please answer y or n\n")
			if errors.Is(err, io.EOF) {
				return false, fmt.Errorf("%w for %q", ErrNoInput, message)
			}
		}
	}
}

// readLine returns the next line without its terminator. At end of input it
// returns whatever was read together with io.EOF.
func (t *Terminal) readLine(p string) (string, error) {
	if t.edit {
		return readEditedLine(p, t.out)
	}
	_, _ = fmt.Fprint(t.out, p)
	s, err := t.in.ReadString('\n')
	return trimTrailingNewline(s), err
}

func trimTrailingNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

func isTTY() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}
