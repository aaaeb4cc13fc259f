package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/uqff/pkg/quant"
)

func TestModelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"microsoft/Phi-3.5-mini-instruct", "Phi-3.5-mini-instruct"},
		{"org/nested/Model-7B", "Model-7B"},
		{"Llama-3.2-1B", "Llama-3.2-1B"},
		{"org/Model/", "Model"},
	}
	for _, tc := range tests {
		if got := ModelName(tc.input); got != tc.expected {
			t.Errorf("ModelName(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestDefaultTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"Llama-3.2-1B", "llama3.2-1b-###.uqff"},
		{"Phi-3.5-mini-instruct", "phi3.5-mini-instruct-###.uqff"},
		{"gemma-2-2b-it", "gemma2-2b-it-###.uqff"},
		{"mixtral", "mixtral-###.uqff"},
	}
	for _, tc := range tests {
		if got := DefaultTemplate(tc.input); got != tc.expected {
			t.Errorf("DefaultTemplate(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	tmpl := "llama3.2-1b-###.uqff"
	first := Materialize(tmpl, quant.Q8_0)
	second := Materialize(tmpl, quant.Q8_0)
	if first != "llama3.2-1b-q8_0.uqff" {
		t.Fatalf("unexpected filename: %q", first)
	}
	if first != second {
		t.Fatalf("materialize not deterministic: %q vs %q", first, second)
	}
	if tmpl != "llama3.2-1b-###.uqff" {
		t.Fatalf("template mutated: %q", tmpl)
	}

	// No placeholder: every scheme collides on the same name.
	if a, b := Materialize("fixed.uqff", quant.Q4K), Materialize("fixed.uqff", quant.Q5K); a != b {
		t.Fatalf("expected collision without placeholder, got %q and %q", a, b)
	}
}

func TestValidateTemplate(t *testing.T) {
	t.Parallel()

	if err := ValidateTemplate("x-###.uqff"); err != nil {
		t.Fatalf("single placeholder rejected: %v", err)
	}
	for _, bad := range []string{"x.uqff", "###-###.uqff"} {
		if err := ValidateTemplate(bad); !errors.Is(err, ErrPlaceholderCount) {
			t.Errorf("ValidateTemplate(%q): expected ErrPlaceholderCount, got %v", bad, err)
		}
	}
}

func TestDerive(t *testing.T) {
	t.Run("save dir joins model name", func(t *testing.T) {
		saveDir := filepath.Join(t.TempDir(), "out")

		l, err := Derive("meta-llama/Llama-3.2-1B", "", saveDir)
		if err != nil {
			t.Fatalf("Derive returned error: %v", err)
		}
		want := filepath.Join(saveDir, "Llama-3.2-1B")
		if l.Dir != want {
			t.Fatalf("unexpected dir: got %q want %q", l.Dir, want)
		}
		if !strings.HasSuffix(l.Dir, "Llama-3.2-1B") {
			t.Fatalf("dir should end in model name: %q", l.Dir)
		}
		if st, err := os.Stat(l.Dir); err != nil || !st.IsDir() {
			t.Fatalf("expected output directory to exist: %v", err)
		}
		if l.Template != "llama3.2-1b-###.uqff" {
			t.Fatalf("unexpected template: %q", l.Template)
		}
		if got := l.Path(quant.Q4K); got != filepath.Join(want, "llama3.2-1b-q4k.uqff") {
			t.Fatalf("unexpected path: %q", got)
		}
	})

	t.Run("existing directory is not an error", func(t *testing.T) {
		saveDir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(saveDir, "m"), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if _, err := Derive("m", "", saveDir); err != nil {
			t.Fatalf("Derive returned error: %v", err)
		}
	})

	t.Run("no save dir is relative to working directory", func(t *testing.T) {
		tmp := t.TempDir()
		t.Chdir(tmp)

		l, err := Derive("Phi-3.5-mini-instruct", "", "")
		if err != nil {
			t.Fatalf("Derive returned error: %v", err)
		}
		if l.Dir != "Phi-3.5-mini-instruct" {
			t.Fatalf("unexpected dir: %q", l.Dir)
		}
		if _, err := os.Stat(filepath.Join(tmp, "Phi-3.5-mini-instruct")); err != nil {
			t.Fatalf("expected directory under working dir: %v", err)
		}
	})

	t.Run("explicit template is verbatim", func(t *testing.T) {
		l, err := Derive("microsoft/Phi-3.5-MoE-instruct", "phi-moe3.5-instruct-###.uqff", t.TempDir())
		if err != nil {
			t.Fatalf("Derive returned error: %v", err)
		}
		if l.Template != "phi-moe3.5-instruct-###.uqff" {
			t.Fatalf("template changed: %q", l.Template)
		}
	})

	t.Run("explicit template without placeholder is rejected", func(t *testing.T) {
		if _, err := Derive("org/m", "m.uqff", t.TempDir()); !errors.Is(err, ErrPlaceholderCount) {
			t.Fatalf("expected ErrPlaceholderCount, got %v", err)
		}
	})

	t.Run("empty model id", func(t *testing.T) {
		if _, err := Derive("  ", "", t.TempDir()); !errors.Is(err, ErrEmptyModelID) {
			t.Fatalf("expected ErrEmptyModelID, got %v", err)
		}
	})
}
