package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/uqff/internal/batch"
	"github.com/samcharles93/uqff/internal/engine"
	"github.com/samcharles93/uqff/pkg/quant"
)

func TestRunQuantizeContinuesPastFailures(t *testing.T) {
	t.Parallel()

	saveDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	rec := engine.NewRecorder()
	rec.Fail[quant.Q5K] = errors.New("CUDA out of memory")

	err := runQuantize(context.Background(), quantizeOptions{
		modelID: "microsoft/Phi-3.5-mini-instruct",
		saveDir: saveDir,
		catalog: quant.CatalogDefault,
		report:  reportPath,
	}, rec)
	if err != nil {
		t.Fatalf("per-scheme failures must not fail the command: %v", err)
	}

	reqs := rec.Requests()
	if len(reqs) != 6 {
		t.Fatalf("expected every default scheme to be attempted, got %d", len(reqs))
	}
	if reqs[0].Output != filepath.Join(saveDir, "Phi-3.5-mini-instruct", "phi3.5-mini-instruct-q3k.uqff") {
		t.Fatalf("unexpected first output %q", reqs[0].Output)
	}

	raw, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var reports []batch.Report
	if err := json.Unmarshal(raw, &reports); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(reports) != 1 || reports[0].Attempted != 6 || len(reports[0].Failures) != 1 {
		t.Fatalf("unexpected report: %+v", reports)
	}
	if reports[0].Failures[0].Scheme != quant.Q5K {
		t.Fatalf("expected Q5K failure, got %v", reports[0].Failures[0].Scheme)
	}
}

func TestRunQuantizeExplicitSchemesAndVision(t *testing.T) {
	t.Parallel()

	rec := engine.NewRecorder()
	err := runQuantize(context.Background(), quantizeOptions{
		modelID:  "microsoft/Phi-3.5-vision-instruct",
		filename: "phi3.5-vision-###.uqff",
		vision:   true,
		arch:     "phi3v",
		saveDir:  t.TempDir(),
		quant:    "q8_0,Q4K",
	}, rec)
	if err != nil {
		t.Fatalf("runQuantize: %v", err)
	}

	reqs := rec.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(reqs))
	}
	if reqs[0].Scheme != quant.Q8_0 || reqs[1].Scheme != quant.Q4K {
		t.Fatalf("schemes out of order: %v, %v", reqs[0].Scheme, reqs[1].Scheme)
	}
	for _, r := range reqs {
		if !r.Vision || r.Arch != engine.ArchPhi3V {
			t.Fatalf("vision settings not forwarded: %+v", r)
		}
	}
	if filepath.Base(reqs[0].Output) != "phi3.5-vision-q8_0.uqff" {
		t.Fatalf("unexpected output %q", reqs[0].Output)
	}
}

func TestRunQuantizePlan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	plan := `models:
  - id: microsoft/Phi-3.5-mini-instruct
  - id: meta-llama/Llama-3.2-11B-Vision-Instruct
    vision: true
    arch: vllama
`
	if err := os.WriteFile(planPath, []byte(plan), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	rec := engine.NewRecorder()
	err := runQuantize(context.Background(), quantizeOptions{
		plan:    planPath,
		saveDir: filepath.Join(dir, "out"),
		quant:   "Q4K",
	}, rec)
	if err != nil {
		t.Fatalf("runQuantize: %v", err)
	}

	reqs := rec.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected one build per model, got %d", len(reqs))
	}
	if reqs[0].ModelID != "microsoft/Phi-3.5-mini-instruct" || reqs[0].Vision {
		t.Fatalf("unexpected first request %+v", reqs[0])
	}
	if reqs[1].Arch != engine.ArchVLlama {
		t.Fatalf("unexpected second request %+v", reqs[1])
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "Llama-3.2-11B-Vision-Instruct")); err != nil {
		t.Fatalf("expected per-model output directory: %v", err)
	}
}

func TestRunQuantizeSetupErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opts quantizeOptions
		want string
	}{
		{"no model", quantizeOptions{catalog: quant.CatalogDefault}, "--model-id is required"},
		{"vision without arch", quantizeOptions{modelID: "org/m", vision: true, catalog: quant.CatalogDefault}, "--arch is required"},
		{"unknown arch", quantizeOptions{modelID: "org/m", vision: true, arch: "clip", catalog: quant.CatalogDefault}, "clip"},
		{"unknown scheme", quantizeOptions{modelID: "org/m", quant: "Q4_K_M"}, "Q4_K_M"},
		{"unknown catalog", quantizeOptions{modelID: "org/m", catalog: "rocm"}, "rocm"},
		{"bad template", quantizeOptions{modelID: "org/m", filename: "m.uqff", catalog: quant.CatalogDefault}, "m.uqff"},
		{"plan and model", quantizeOptions{modelID: "org/m", plan: "p.yaml", catalog: quant.CatalogDefault}, "mutually exclusive"},
		{"arch without vision", quantizeOptions{modelID: "org/m", arch: "phi3v", catalog: quant.CatalogDefault}, "requires --vision"},
		{"empty scheme list", quantizeOptions{modelID: "org/m", quant: ","}, "names no schemes"},
		{"remote with absolute save dir", quantizeOptions{modelID: "org/m", engineURL: "http://builder:8321", catalog: quant.CatalogDefault}, "builder root"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.opts.saveDir = t.TempDir()
			rec := engine.NewRecorder()
			err := runQuantize(context.Background(), tc.opts, rec)

			var exit cli.ExitCoder
			if !errors.As(err, &exit) || exit.ExitCode() != 1 {
				t.Fatalf("expected exit code 1, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
			if n := len(rec.Requests()); n != 0 {
				t.Fatalf("no build should start on setup errors, got %d", n)
			}
		})
	}
}

func TestRunQuantizeDryRun(t *testing.T) {
	t.Parallel()

	saveDir := t.TempDir()
	err := runQuantize(context.Background(), quantizeOptions{
		modelID: "org/model",
		saveDir: saveDir,
		catalog: quant.CatalogCUDA,
		dryRun:  true,
	}, nil)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(saveDir, "model"))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run wrote files: %v", entries)
	}
}
