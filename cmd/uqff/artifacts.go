package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/opencontainers/go-digest"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/uqff/internal/logger"
	"github.com/samcharles93/uqff/internal/modelcard"
)

func artifactsCmd() *cli.Command {
	var (
		dir    string
		noHash bool
	)

	return &cli.Command{
		Name:    "artifacts",
		Aliases: []string{"ls"},
		Usage:   "List UQFF artifacts grouped the way the model card groups them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "directory containing UQFF files",
				Value:       ".",
				Destination: &dir,
			},
			&cli.BoolFlag{
				Name:        "no-digest",
				Usage:       "skip hashing representative files",
				Destination: &noHash,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			groups, err := modelcard.Scan(dir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(groups) == 0 {
				log.Info("no artifacts found", "path", dir)
				return nil
			}
			rows, err := inventory(groups, !noHash)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			renderInventory(os.Stdout, dir, rows)
			return nil
		},
	}
}

type inventoryRow struct {
	Key    string
	Label  string
	Files  int
	Size   int64
	Digest digest.Digest
}

func inventory(groups []*modelcard.Group, hash bool) ([]inventoryRow, error) {
	rows := make([]inventoryRow, 0, len(groups))
	for _, g := range groups {
		rep := g.Representative()
		row := inventoryRow{
			Key:   g.Key,
			Label: modelcard.InferLabel(rep.Stem),
			Files: len(g.Members),
		}
		for _, m := range g.Members {
			info, err := os.Stat(m.Path)
			if err != nil {
				return nil, err
			}
			row.Size += info.Size()
		}
		if hash {
			d, err := fileDigest(rep.Path)
			if err != nil {
				return nil, fmt.Errorf("digest %s: %w", rep.Name, err)
			}
			row.Digest = d
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	return digest.FromReader(f)
}

func renderInventory(w io.Writer, dir string, rows []inventoryRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(dir)
	t.AppendHeader(table.Row{"Group", "Label", "Files", "Size", "Digest"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Files", Align: text.AlignRight},
		{Name: "Size", Align: text.AlignRight},
	})
	var total int64
	for _, r := range rows {
		t.AppendRow(table.Row{r.Key, r.Label, r.Files, formatSize(r.Size), shortDigest(r.Digest)})
		total += r.Size
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d group(s)", len(rows)), "", "", formatSize(total), ""})
	t.Render()
}

func shortDigest(d digest.Digest) string {
	if d == "" {
		return "-"
	}
	enc := d.Encoded()
	if len(enc) > 12 {
		enc = enc[:12]
	}
	return strings.Join([]string{d.Algorithm().String(), enc}, ":")
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
