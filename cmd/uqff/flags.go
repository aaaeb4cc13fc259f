package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/uqff/internal/logger"
)

var (
	logLevel  string
	logFormat string
	debug     bool

	// appConfig is loaded once in setupLogging, before any subcommand runs.
	appConfig Config
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	appConfig = LoadConfig()
	applyLoggingConfig(cmd, appConfig)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	log, err := logger.ForFormat(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}
