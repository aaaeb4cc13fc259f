package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/uqff/internal/builder"
	"github.com/samcharles93/uqff/internal/engine"
	"github.com/samcharles93/uqff/internal/logger"
)

func builderCmd() *cli.Command {
	return &cli.Command{
		Name:  "builder",
		Usage: "Run builds on behalf of remote quantize invocations",
		Commands: []*cli.Command{
			builderServeCmd(),
		},
	}
}

func builderServeCmd() *cli.Command {
	var (
		addr          string
		root          string
		engineCommand string
		engineArgs    []string
		readTimeout   time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve " + engine.BuildsPath + " backed by a local builder executable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8321",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "root",
				Usage:       "directory that request output paths are resolved against",
				Value:       ".",
				Destination: &root,
			},
			&cli.StringFlag{
				Name:        "engine",
				Usage:       "builder executable",
				Value:       engine.DefaultCommand,
				Destination: &engineCommand,
			},
			&cli.StringSliceFlag{
				Name:        "engine-arg",
				Usage:       "extra argument passed to the builder executable (repeatable)",
				Destination: &engineArgs,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			log := logger.FromContext(ctx)
			applyBuilderConfig(cmd, appConfig, &addr, &root, &engineCommand, &engineArgs)

			absRoot, err := filepath.Abs(root)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: resolve root: %v", err), 1)
			}
			if err := os.MkdirAll(absRoot, 0o755); err != nil {
				return cli.Exit(fmt.Sprintf("error: create root: %v", err), 1)
			}
			sp, err := engine.NewSubprocess(engineCommand, engineArgs)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			sp.Output = os.Stderr

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			builder.NewServer(sp, absRoot, log).Register(e)

			log.Info("starting builder", "address", addr, "root", absRoot, "engine", sp.Command())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
