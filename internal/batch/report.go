package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteReports writes reports as an indented JSON array to path.
func WriteReports(path string, reports []*Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderSummary prints one row per report and one row per failed scheme.
func RenderSummary(w io.Writer, reports []*Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Model", "Directory", "Attempted", "Built", "Failed"})
	for _, r := range reports {
		t.AppendRow(table.Row{r.Model, r.Dir, r.Attempted, r.Succeeded(), r.Failed()})
	}
	t.Render()

	var failures []string
	for _, r := range reports {
		for _, f := range r.Failures {
			failures = append(failures, fmt.Sprintf("%s %s: %s", r.Model, f.Scheme, firstLine(f.Error)))
		}
	}
	if len(failures) == 0 {
		return
	}
	ft := table.NewWriter()
	ft.SetOutputMirror(w)
	ft.AppendHeader(table.Row{"Failed build"})
	for _, f := range failures {
		ft.AppendRow(table.Row{f})
	}
	ft.Render()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
