// Package layout maps a model identifier and a quantization scheme to the
// directory and filename an artifact is written to.
//
// Names follow the format [name][version]-[size]-[instruct?]-[quant].uqff,
// with the quant segment left as a placeholder in the template until a
// scheme is materialized.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/uqff/pkg/quant"
)

const (
	// Placeholder is replaced by the lower-cased scheme name.
	Placeholder = "###"
	// Extension is the artifact file extension, without the dot.
	Extension = "uqff"
)

var (
	ErrEmptyModelID     = errors.New("model id is empty")
	ErrPlaceholderCount = errors.New("filename template must contain exactly one " + Placeholder)
)

// ModelSpec identifies the model a batch is built from.
type ModelSpec struct {
	Identifier string // e.g. "microsoft/Phi-3.5-mini-instruct"
	Name       string // last path segment of Identifier
}

func NewModelSpec(id string) (ModelSpec, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ModelSpec{}, ErrEmptyModelID
	}
	return ModelSpec{Identifier: id, Name: ModelName(id)}, nil
}

// ModelName returns the final '/'-delimited segment of id, or id itself
// when it has no separator.
func ModelName(id string) string {
	trimmed := strings.TrimRight(id, "/")
	if trimmed == "" {
		return id
	}
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// DefaultTemplate lower-cases the model name and removes its first hyphen,
// merging name and version ("Llama-3.2-1B" -> "llama3.2-1b-###.uqff").
func DefaultTemplate(modelName string) string {
	name := strings.Replace(strings.ToLower(modelName), "-", "", 1)
	return name + "-" + Placeholder + "." + Extension
}

// Materialize substitutes every placeholder in template with the scheme's
// lower-cased name. A template without a placeholder is returned unchanged,
// so every scheme maps to the same filename; Derive rejects such templates.
func Materialize(template string, s quant.Scheme) string {
	return strings.ReplaceAll(template, Placeholder, s.Lower())
}

// ValidateTemplate reports whether template contains exactly one placeholder.
func ValidateTemplate(template string) error {
	if n := strings.Count(template, Placeholder); n != 1 {
		return fmt.Errorf("%w: %q has %d", ErrPlaceholderCount, template, n)
	}
	return nil
}

// Layout is the resolved output location for one model's batch.
type Layout struct {
	Model    ModelSpec
	Dir      string
	Template string
}

// Path returns the output path of the artifact for s.
func (l Layout) Path(s quant.Scheme) string {
	return filepath.Join(l.Dir, Materialize(l.Template, s))
}

// Derive resolves the output directory and filename template for modelID
// and creates the directory. The directory is saveDir/<model name>, or
// <model name> relative to the working directory when saveDir is empty.
// An explicit template is used verbatim once validated.
func Derive(modelID, template, saveDir string) (Layout, error) {
	spec, err := NewModelSpec(modelID)
	if err != nil {
		return Layout{}, err
	}

	if template == "" {
		template = DefaultTemplate(spec.Name)
	} else if err := ValidateTemplate(template); err != nil {
		return Layout{}, err
	}

	dir := spec.Name
	if saveDir = strings.TrimSpace(saveDir); saveDir != "" {
		dir = filepath.Join(saveDir, spec.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Layout{}, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	return Layout{Model: spec, Dir: dir, Template: template}, nil
}
