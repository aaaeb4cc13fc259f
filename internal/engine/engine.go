// Package engine defines the contract with the external model builder that
// quantizes a model and serializes it as a UQFF artifact, and the adapters
// that reach it: a local subprocess, a remote builder over HTTP, and an
// in-memory recorder.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/uqff/pkg/quant"
)

var (
	ErrInvalidRequest     = errors.New("invalid build request")
	ErrUnknownVisionArch  = errors.New("unknown vision architecture")
	errMissingVisionArch  = errors.New("vision build requires an architecture")
	errEmptyEngineCommand = errors.New("engine command is empty")
)

// Engine builds one quantized artifact per call. Build blocks until the
// artifact is written or the build fails.
type Engine interface {
	Build(ctx context.Context, req Request) error
}

// Request is a single (model, scheme, output) build.
type Request struct {
	ModelID string       `json:"model_id"`
	Scheme  quant.Scheme `json:"scheme"`
	Output  string       `json:"output"`
	Vision  bool         `json:"vision,omitempty"`
	Arch    VisionArch   `json:"arch,omitempty"`
}

func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.ModelID) == "":
		return fmt.Errorf("%w: model id is empty", ErrInvalidRequest)
	case !r.Scheme.Valid():
		return fmt.Errorf("%w: %v", ErrInvalidRequest, r.Scheme)
	case strings.TrimSpace(r.Output) == "":
		return fmt.Errorf("%w: output path is empty", ErrInvalidRequest)
	case r.Vision && r.Arch == "":
		return fmt.Errorf("%w: %w", ErrInvalidRequest, errMissingVisionArch)
	}
	return nil
}

// BuildError reports a failed build with whatever diagnostics the engine
// produced.
type BuildError struct {
	Scheme quant.Scheme
	Output string
	Stderr string
	Err    error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("build %s -> %s: %v", e.Scheme, e.Output, e.Err)
	if e.Stderr != "" {
		msg += "\n\nengine output:\n" + e.Stderr
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// VisionArch names the loader used for vision models.
type VisionArch string

const (
	ArchPhi3V     VisionArch = "phi3v"
	ArchIdefics2  VisionArch = "idefics2"
	ArchLLaVANext VisionArch = "llava-next"
	ArchLLaVA     VisionArch = "llava"
	ArchVLlama    VisionArch = "vllama"
	ArchQwen2VL   VisionArch = "qwen2vl"
	ArchIdefics3  VisionArch = "idefics3"
	ArchMiniCPMO  VisionArch = "minicpmo"
	ArchPhi4MM    VisionArch = "phi4mm"
	ArchQwen25VL  VisionArch = "qwen2_5vl"
	ArchGemma3    VisionArch = "gemma3"
	ArchMistral3  VisionArch = "mistral3"
	ArchLlama4    VisionArch = "llama4"
)

var visionArches = []VisionArch{
	ArchPhi3V, ArchIdefics2, ArchLLaVANext, ArchLLaVA, ArchVLlama, ArchQwen2VL,
	ArchIdefics3, ArchMiniCPMO, ArchPhi4MM, ArchQwen25VL, ArchGemma3, ArchMistral3, ArchLlama4,
}

// ParseVisionArch resolves an architecture name case-insensitively.
// "llava_next" is accepted for llava-next.
func ParseVisionArch(s string) (VisionArch, error) {
	want := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "llava_next", "llava-next")
	for _, a := range visionArches {
		if string(a) == want {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVisionArch, s)
}

func VisionArches() []VisionArch {
	return append([]VisionArch(nil), visionArches...)
}
