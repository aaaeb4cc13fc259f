package modelcard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/uqff/internal/layout"
	"github.com/samcharles93/uqff/internal/logger"
	"github.com/samcharles93/uqff/internal/prompt"
)

// DefaultOutput is the card filename offered to the operator.
const DefaultOutput = "README.md"

// TopologyRecord ties a multi-scheme artifact to the topology file that
// describes which scheme applies where.
type TopologyRecord struct {
	File string // representative artifact filename
	Path string // topology file path as entered
}

// topologies keeps records in insertion order, keyed by File. A later
// record for the same File replaces the earlier one in place.
type topologies struct {
	records []TopologyRecord
	index   map[string]int
}

func (t *topologies) put(r TopologyRecord) (replaced bool) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[r.File]; ok {
		t.records[i] = r
		return true
	}
	t.index[r.File] = len(t.records)
	t.records = append(t.records, r)
	return false
}

// Assembler asks the operator for the metadata that filenames cannot carry
// and renders the card.
type Assembler struct {
	Prompt prompt.Prompter

	// WorkDir is the artifact directory. Empty means ask, defaulting to ".".
	WorkDir string
	// HubUser prefixes the suggested display ID ("<user>/<name>-UQFF").
	HubUser string

	// ReadFile reads topology files. Nil means os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// Result describes a written card.
type Result struct {
	Path       string
	Groups     int
	Topologies int
}

// Run resolves the source directory, groups its artifacts, collects labels
// and topology files per group, and writes the card. It returns
// ErrNoArtifacts, with nothing written, when the directory holds no artifacts.
func (a *Assembler) Run(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx)

	dir := strings.TrimSpace(a.WorkDir)
	if dir == "" {
		var err error
		if dir, err = a.text(ctx, "Directory containing UQFF files", "."); err != nil {
			return nil, err
		}
	}

	groups, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoArtifacts, dir)
	}
	log.Info("found artifacts", "dir", dir, "groups", len(groups))

	card, topo, err := a.assemble(ctx, groups)
	if err != nil {
		return nil, err
	}

	out, err := a.text(ctx, "Output file", DefaultOutput)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, []byte(card.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write model card: %w", err)
	}
	log.Info("wrote model card", "path", out)

	return &Result{Path: out, Groups: len(groups), Topologies: len(topo.records)}, nil
}

func (a *Assembler) assemble(ctx context.Context, groups []*Group) (*Card, *topologies, error) {
	log := logger.FromContext(ctx)

	baseModel, err := a.text(ctx, "Base model ID (e.g. microsoft/Phi-3.5-mini-instruct)", "")
	if err != nil {
		return nil, nil, err
	}
	displayID, err := a.text(ctx, "Model ID shown in examples", a.suggestDisplayID(baseModel))
	if err != nil {
		return nil, nil, err
	}
	vision, err := a.confirm(ctx, "Is this a vision model?")
	if err != nil {
		return nil, nil, err
	}

	card := &Card{}
	if err := card.Header(baseModel); err != nil {
		return nil, nil, err
	}
	card.Description()
	card.BeginExamples()

	topo := &topologies{}
	for _, g := range groups {
		rep := g.Representative()
		answer, err := a.text(ctx, fmt.Sprintf("Quantization type(s) for %s (%d file(s))", rep.Name, len(g.Members)), InferLabel(rep.Stem))
		if err != nil {
			return nil, nil, err
		}

		labels := ParseLabels(answer)
		multi := IsMultiScheme(answer)
		if multi {
			path, err := a.text(ctx, fmt.Sprintf("Topology file for %s", rep.Name), "")
			if err != nil {
				return nil, nil, err
			}
			if topo.put(TopologyRecord{File: rep.Name, Path: path}) {
				log.Warn("topology replaced for file", "file", rep.Name, "path", path)
			}
		}
		card.ExampleRow(labels, multi, ExampleCommand(displayID, rep.Name, vision))
	}

	card.Topologies(topo.records, a.readTopologies(ctx, topo.records))
	return card, topo, nil
}

// text and confirm refuse to ask once ctx is done, so an interrupted
// session never reaches the write.
func (a *Assembler) text(ctx context.Context, message, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return a.Prompt.Text(message, def)
}

func (a *Assembler) confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.Prompt.Confirm(message)
}

func (a *Assembler) readTopologies(ctx context.Context, records []TopologyRecord) []string {
	read := a.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	bodies := make([]string, len(records))
	for i, r := range records {
		data, err := read(r.Path)
		if err != nil {
			logger.FromContext(ctx).Warn("cannot read topology", "file", r.File, "path", r.Path, "error", err)
			bodies[i] = TopologyUnreadable
			continue
		}
		bodies[i] = string(data)
	}
	return bodies
}

func (a *Assembler) suggestDisplayID(baseModel string) string {
	name := layout.ModelName(baseModel) + "-UQFF"
	if a.HubUser == "" {
		return name
	}
	return a.HubUser + "/" + name
}
