package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samcharles93/uqff/internal/logger"
)

// DefaultCommand is the builder executable looked up when none is configured.
const DefaultCommand = "uqff-build"

// Subprocess runs an external builder executable once per request:
//
//	<command> [extra args] --model-id <id> --isq <SCHEME> --write-uqff <path> [--vision --arch <arch>]
//
// The builder is expected to exit 0 once the artifact is fully written.
type Subprocess struct {
	command string
	extra   []string

	// Output receives the builder's stdout and stderr as it runs. Nil discards.
	Output io.Writer
}

// NewSubprocess resolves command through PATH (or as a path) and returns an
// engine that invokes it.
func NewSubprocess(command string, extra []string) (*Subprocess, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, errEmptyEngineCommand
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf(`engine %q not found

uqff needs a model builder executable to produce UQFF files.
Point --engine (or engine.command in the config file, or UQFF_ENGINE) at it,
or use --engine-url to build on a remote "uqff builder serve" instance: %w`, command, err)
	}
	return &Subprocess{command: path, extra: append([]string(nil), extra...)}, nil
}

func (s *Subprocess) Command() string { return s.command }

func (s *Subprocess) Build(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return &BuildError{Scheme: req.Scheme, Output: req.Output, Err: err}
	}

	args := s.args(req)
	logger.FromContext(ctx).Debug("starting engine", "command", s.command, "args", strings.Join(args, " "))

	// Keep the tail of the builder's output for the error message.
	tail := &limitedBuffer{max: 8192}
	var out io.Writer = tail
	if s.Output != nil {
		out = io.MultiWriter(s.Output, tail)
	}

	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return &BuildError{
			Scheme: req.Scheme,
			Output: req.Output,
			Stderr: lastLines(tail.String(), 10),
			Err:    err,
		}
	}
	return nil
}

func (s *Subprocess) args(req Request) []string {
	args := append([]string(nil), s.extra...)
	args = append(args,
		"--model-id", req.ModelID,
		"--isq", req.Scheme.String(),
		"--write-uqff", req.Output,
	)
	if req.Vision {
		args = append(args, "--vision", "--arch", string(req.Arch))
	}
	return args
}

func lastLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, err := b.buf.Write(p)
	if b.buf.Len() > b.max {
		data := b.buf.Bytes()
		keep := append([]byte(nil), data[len(data)-b.max:]...)
		b.buf.Reset()
		b.buf.Write(keep)
	}
	return n, err
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
