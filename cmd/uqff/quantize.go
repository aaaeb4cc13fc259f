package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/uqff/internal/batch"
	"github.com/samcharles93/uqff/internal/engine"
	"github.com/samcharles93/uqff/internal/layout"
	"github.com/samcharles93/uqff/internal/logger"
	"github.com/samcharles93/uqff/pkg/quant"
)

// quantizeOptions is everything one quantize invocation can vary.
type quantizeOptions struct {
	modelID  string
	filename string
	vision   bool
	arch     string
	saveDir  string

	plan    string
	quant   string
	catalog string

	engineCommand string
	engineURL     string
	engineArgs    []string

	report string
	dryRun bool
}

func quantizeCmd() *cli.Command {
	opts := quantizeOptions{
		catalog:       quant.CatalogDefault,
		engineCommand: engine.DefaultCommand,
	}

	return &cli.Command{
		Name:  "quantize",
		Usage: "Build one UQFF artifact per quantization scheme",
		Flags: quantizeFlags(&opts),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// Interrupt lets the current build finish its cleanup and
			// still prints the summary for what ran.
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			applyQuantizeConfig(cmd, appConfig, &opts)
			return runQuantize(ctx, opts, nil)
		},
	}
}

func quantizeFlags(opts *quantizeOptions) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model-id",
			Aliases:     []string{"m"},
			Usage:       "model identifier, e.g. microsoft/Phi-3.5-mini-instruct",
			Destination: &opts.modelID,
		},
		&cli.StringFlag{
			Name:        "filename",
			Aliases:     []string{"f"},
			Usage:       "output filename template containing " + layout.Placeholder,
			Destination: &opts.filename,
		},
		&cli.BoolFlag{
			Name:        "vision",
			Usage:       "build with the vision loader",
			Destination: &opts.vision,
		},
		&cli.StringFlag{
			Name:        "arch",
			Usage:       "vision architecture (" + joinArches() + ")",
			Destination: &opts.arch,
		},
		&cli.StringFlag{
			Name:        "save-dir",
			Aliases:     []string{"o"},
			Usage:       "parent directory for the model's output directory",
			Destination: &opts.saveDir,
		},
		&cli.StringFlag{
			Name:        "plan",
			Usage:       "YAML file listing several models to quantize in turn",
			Destination: &opts.plan,
		},
		&cli.StringFlag{
			Name:        "quant",
			Aliases:     []string{"q"},
			Usage:       "comma separated schemes to build instead of the catalog",
			Destination: &opts.quant,
		},
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "scheme catalog (" + strings.Join(quant.CatalogNames(), ", ") + ")",
			Value:       quant.CatalogDefault,
			Destination: &opts.catalog,
		},
		&cli.StringFlag{
			Name:        "engine",
			Usage:       "builder executable",
			Value:       engine.DefaultCommand,
			Destination: &opts.engineCommand,
		},
		&cli.StringSliceFlag{
			Name:        "engine-arg",
			Usage:       "extra argument passed to the builder executable (repeatable)",
			Destination: &opts.engineArgs,
		},
		&cli.StringFlag{
			Name:        "engine-url",
			Usage:       "build on a remote uqff builder instead of a local executable",
			Destination: &opts.engineURL,
		},
		&cli.StringFlag{
			Name:        "report",
			Usage:       "write the batch reports as JSON to this path",
			Destination: &opts.report,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "log every output path without building anything",
			Destination: &opts.dryRun,
		},
	}
}

// runQuantize validates every input before the first build so that setup
// mistakes fail fast. Once building starts, failed schemes are reported but
// never change the exit status. A nil eng selects one from opts.
func runQuantize(ctx context.Context, opts quantizeOptions, eng engine.Engine) error {
	log := logger.FromContext(ctx)

	schemes, err := opts.schemes()
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	jobs, err := opts.jobs(schemes)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if err := opts.checkRemoteOutputs(jobs, schemes); err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if eng == nil {
		if eng, err = opts.newEngine(); err != nil {
			return cli.Exit(fmt.Sprintf("error: %v", err), 1)
		}
	}
	if opts.dryRun {
		log.Info("dry run: no artifacts will be built")
	}

	driver := batch.NewDriver(eng)
	reports := make([]*batch.Report, 0, len(jobs))
	for _, job := range jobs {
		rep := driver.Run(ctx, job)
		reports = append(reports, rep)
		if rep.Canceled {
			break
		}
	}

	batch.RenderSummary(os.Stdout, reports)

	if opts.report != "" {
		if err := batch.WriteReports(opts.report, reports); err != nil {
			return cli.Exit(fmt.Sprintf("error: write report: %v", err), 1)
		}
		log.Info("wrote report", "path", opts.report)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return cli.Exit("interrupted", 130)
	}
	return nil
}

func (o quantizeOptions) schemes() ([]quant.Scheme, error) {
	if strings.TrimSpace(o.quant) == "" {
		return quant.Catalog(o.catalog)
	}
	schemes, err := quant.ParseList(o.quant)
	if err != nil {
		return nil, err
	}
	if len(schemes) == 0 {
		return nil, fmt.Errorf("--quant %q names no schemes", o.quant)
	}
	return schemes, nil
}

func (o quantizeOptions) jobs(schemes []quant.Scheme) ([]batch.Job, error) {
	var models []batch.PlanModel
	switch {
	case o.plan != "" && o.modelID != "":
		return nil, errors.New("--plan and --model-id are mutually exclusive")
	case o.plan != "":
		p, err := batch.LoadPlan(o.plan)
		if err != nil {
			return nil, err
		}
		models = p.Models
	case strings.TrimSpace(o.modelID) == "":
		return nil, errors.New("--model-id is required (or --plan)")
	default:
		models = []batch.PlanModel{{ID: o.modelID, Filename: o.filename, Vision: o.vision, Arch: o.arch}}
	}

	jobs := make([]batch.Job, 0, len(models))
	for _, m := range models {
		if m.Arch != "" && !m.Vision {
			return nil, fmt.Errorf("%s: --arch %s requires --vision", m.ID, m.Arch)
		}
		var arch engine.VisionArch
		if m.Vision {
			if m.Arch == "" {
				return nil, fmt.Errorf("%s: --arch is required for vision models (%s)", m.ID, joinArches())
			}
			a, err := engine.ParseVisionArch(m.Arch)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.ID, err)
			}
			arch = a
		}
		l, err := layout.Derive(m.ID, m.Filename, o.saveDir)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batch.Job{Layout: l, Schemes: schemes, Vision: m.Vision, Arch: arch})
	}
	return jobs, nil
}

// checkRemoteOutputs rejects output paths a remote builder would refuse:
// it resolves them under its own root, so they must be relative and stay
// inside it.
func (o quantizeOptions) checkRemoteOutputs(jobs []batch.Job, schemes []quant.Scheme) error {
	if o.engineURL == "" || o.dryRun {
		return nil
	}
	for _, job := range jobs {
		for _, s := range schemes {
			if out := job.Layout.Path(s); !filepath.IsLocal(out) {
				return fmt.Errorf("%s: output %s must be a relative path inside the builder root when using --engine-url", job.Layout.Model.Identifier, out)
			}
		}
	}
	return nil
}

func (o quantizeOptions) newEngine() (engine.Engine, error) {
	switch {
	case o.dryRun:
		return engine.NewRecorder(), nil
	case o.engineURL != "":
		return engine.NewHTTP(o.engineURL), nil
	}
	sp, err := engine.NewSubprocess(o.engineCommand, o.engineArgs)
	if err != nil {
		return nil, err
	}
	sp.Output = os.Stderr
	return sp, nil
}

func joinArches() string {
	arches := engine.VisionArches()
	names := make([]string, len(arches))
	for i, a := range arches {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
