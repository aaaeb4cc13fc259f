// Package batch drives the engine across every quantization scheme for a
// model, one build at a time.
package batch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/uqff/internal/engine"
	"github.com/samcharles93/uqff/internal/layout"
	"github.com/samcharles93/uqff/internal/logger"
	"github.com/samcharles93/uqff/pkg/quant"
)

// Job is one model's batch: where artifacts go and which schemes to build.
type Job struct {
	Layout  layout.Layout
	Schemes []quant.Scheme
	Vision  bool
	Arch    engine.VisionArch
}

// Failure is a scheme whose build returned an error.
type Failure struct {
	Scheme quant.Scheme `json:"scheme"`
	Output string       `json:"output"`
	Error  string       `json:"error"`

	err error
}

func (f Failure) Err() error { return f.err }

// Report describes what a batch attempted. It is observational only: the
// driver never turns a failed scheme into a returned error.
type Report struct {
	RunID     string    `json:"run_id"`
	Model     string    `json:"model"`
	Dir       string    `json:"dir"`
	Vision    bool      `json:"vision"`
	Attempted int       `json:"attempted"`
	Built     []string  `json:"built"`
	Failures  []Failure `json:"failures"`
	Canceled  bool      `json:"canceled,omitempty"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
}

func (r *Report) Failed() int    { return len(r.Failures) }
func (r *Report) Succeeded() int { return r.Attempted - len(r.Failures) }

// Driver runs jobs against an engine.
type Driver struct {
	Engine engine.Engine

	now func() time.Time
}

func NewDriver(eng engine.Engine) *Driver {
	return &Driver{Engine: eng, now: time.Now}
}

// Run builds job.Schemes in order, waiting for each build before starting
// the next. A failed scheme is logged and recorded; the remaining schemes
// still run. Run stops early only when ctx is canceled.
func (d *Driver) Run(ctx context.Context, job Job) *Report {
	now := d.now
	if now == nil {
		now = time.Now
	}
	log := logger.FromContext(ctx).With("model", job.Layout.Model.Identifier)

	rep := &Report{
		RunID:    uuid.NewString(),
		Model:    job.Layout.Model.Identifier,
		Dir:      job.Layout.Dir,
		Vision:   job.Vision,
		Built:    []string{},
		Failures: []Failure{},
		Started:  now(),
	}
	log.Info("starting batch", "run", rep.RunID, "dir", job.Layout.Dir, "schemes", len(job.Schemes))

	for _, s := range job.Schemes {
		if ctx.Err() != nil {
			rep.Canceled = true
			log.Warn("batch canceled", "remaining_from", s.String())
			break
		}

		out := job.Layout.Path(s)
		rep.Attempted++
		log.Info("generating", "scheme", s.String(), "output", out)

		start := now()
		err := d.Engine.Build(ctx, engine.Request{
			ModelID: job.Layout.Model.Identifier,
			Scheme:  s,
			Output:  out,
			Vision:  job.Vision,
			Arch:    job.Arch,
		})
		if err != nil {
			log.Error("build failed", "scheme", s.String(), "output", out, "error", err)
			rep.Failures = append(rep.Failures, Failure{Scheme: s, Output: out, Error: err.Error(), err: err})
			continue
		}
		rep.Built = append(rep.Built, out)
		log.Debug("built", "scheme", s.String(), "elapsed", now().Sub(start).Round(time.Millisecond))
	}

	rep.Finished = now()
	log.Info("batch finished", "attempted", rep.Attempted, "failed", rep.Failed())
	return rep
}
