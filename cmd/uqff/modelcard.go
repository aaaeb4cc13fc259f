package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/uqff/internal/logger"
	"github.com/samcharles93/uqff/internal/modelcard"
	"github.com/samcharles93/uqff/internal/prompt"
)

func modelCardCmd() *cli.Command {
	var (
		workDir string
		hubUser string
	)

	return &cli.Command{
		Name:    "model-card",
		Aliases: []string{"card"},
		Usage:   "Interactively write a model card for a directory of UQFF files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "work-dir",
				Aliases:     []string{"d"},
				Usage:       "directory containing UQFF files (asked for when omitted)",
				Destination: &workDir,
			},
			&cli.StringFlag{
				Name:        "hub-user",
				Usage:       "hub user or organization used in the suggested display ID",
				Destination: &hubUser,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyModelCardConfig(cmd, appConfig, &hubUser)
			return runModelCard(ctx, &modelcard.Assembler{
				Prompt:  prompt.NewTerminal(),
				WorkDir: workDir,
				HubUser: hubUser,
			})
		},
	}
}

func runModelCard(ctx context.Context, a *modelcard.Assembler) error {
	res, err := a.Run(ctx)
	switch {
	case errors.Is(err, modelcard.ErrNoArtifacts):
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	case errors.Is(err, prompt.ErrInterrupted), errors.Is(err, context.Canceled):
		return cli.Exit("interrupted; nothing written", 130)
	case errors.Is(err, prompt.ErrNoInput):
		return cli.Exit("error: input ended before the model card was complete; nothing written", 1)
	case err != nil:
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	logger.FromContext(ctx).Debug("model card summary", "groups", res.Groups, "topologies", res.Topologies)
	fmt.Printf("Model card written to %s\n", res.Path)
	return nil
}
