package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("build finished", "scheme", "Q4K")

	output := buf.String()
	if !strings.Contains(output, `"msg":"build finished"`) {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, `"scheme":"Q4K"`) {
		t.Fatalf("expected scheme attribute, got: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Debug("hidden too")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Warn("topology overwritten")
	if !strings.Contains(buf.String(), "topology overwritten") {
		t.Fatalf("expected warn message, got: %s", buf.String())
	}
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		marker string
	}{
		{"json", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"pretty", "INFO"},
		{"", "INFO"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := ForFormat(&buf, tc.format, slog.LevelInfo)
		if err != nil {
			t.Fatalf("ForFormat(%q): %v", tc.format, err)
		}
		log.Info("hello")
		if !strings.Contains(buf.String(), tc.marker) {
			t.Errorf("ForFormat(%q): expected %q in %q", tc.format, tc.marker, buf.String())
		}
	}

	if _, err := ForFormat(&bytes.Buffer{}, "xml", slog.LevelInfo); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithAndGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("model", "org/m").WithGroup("batch")
	log.Info("scheme done", "scheme", "Q8_0")

	output := buf.String()
	if !strings.Contains(output, `"model":"org/m"`) {
		t.Fatalf("expected model attribute, got: %s", output)
	}
	if !strings.Contains(output, `"batch":{"scheme":"Q8_0"}`) {
		t.Fatalf("expected grouped attribute, got: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestPrettyHandler(t *testing.T) {
	t.Parallel()

	t.Run("attrs and quoting", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(NewPrettyHandler(&buf, nil))
		log.Info("generating", "output", "Phi-3.5/phi3.5-q4k.uqff", "note", "has space")

		out := buf.String()
		if !strings.Contains(out, "output=Phi-3.5/phi3.5-q4k.uqff") {
			t.Fatalf("expected unquoted path, got: %s", out)
		}
		if !strings.Contains(out, `note="has space"`) {
			t.Fatalf("expected quoted value, got: %s", out)
		}
	})

	t.Run("groups nest with dots", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewPrettyHandler(&buf, nil).WithGroup("a").WithGroup("b")
		slog.New(h).Info("nested", "key", "val")
		if !strings.Contains(buf.String(), "a.b.key=val") {
			t.Fatalf("expected a.b.key=val, got: %s", buf.String())
		}
	})

	t.Run("empty group is a no-op", func(t *testing.T) {
		h := NewPrettyHandler(&bytes.Buffer{}, nil)
		if h.WithGroup("") != slog.Handler(h) {
			t.Fatal("WithGroup(\"\") should return the same handler")
		}
	})

	t.Run("enabled honours level", func(t *testing.T) {
		h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
		if h.Enabled(context.Background(), slog.LevelInfo) {
			t.Error("info should be disabled at warn")
		}
		if !h.Enabled(context.Background(), slog.LevelError) {
			t.Error("error should be enabled at warn")
		}
	})
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"q4k,q5k", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"k=v", true},
		{"", false},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}
