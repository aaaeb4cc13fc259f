package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/samcharles93/uqff/pkg/quant"
)

// Recorder is an Engine that records every request instead of building.
// Schemes listed in Fail return the mapped error. With WriteFiles set, a
// small placeholder file is written at each successful output path.
type Recorder struct {
	Fail       map[quant.Scheme]error
	WriteFiles bool

	mu       sync.Mutex
	requests []Request
}

func NewRecorder() *Recorder {
	return &Recorder{Fail: make(map[quant.Scheme]error)}
}

func (r *Recorder) Build(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.requests = append(r.requests, req)
	failErr := r.Fail[req.Scheme]
	r.mu.Unlock()

	if failErr != nil {
		return &BuildError{Scheme: req.Scheme, Output: req.Output, Err: failErr}
	}
	if r.WriteFiles {
		if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
			return err
		}
		return os.WriteFile(req.Output, []byte("UQFF "+req.Scheme.String()+"\n"), 0o644)
	}
	return nil
}

// Requests returns a copy of the recorded requests in call order.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}
