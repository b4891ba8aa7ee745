package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/starford/headsync/internal/noteservice"
	"github.com/starford/headsync/internal/slug"
	"github.com/starford/headsync/internal/syncer"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	info    = color.New(color.FgCyan).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
)

func slugCommand() *cli.Command {
	return &cli.Command{
		Name:      "slug",
		Usage:     "Print the filename slug for heading text",
		ArgsUsage: "<text...>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("slug: text is required")
			}
			_, err := fmt.Fprintln(cmd.Root().Writer, slug.Make(strings.Join(cmd.Args().Slice(), " ")))
			return err
		},
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Show the heading of a note and the name a sync would give it",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-color", Usage: "Disable colored output"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("preview: exactly one file is required")
			}
			if cmd.Bool("no-color") {
				color.NoColor = true
			}
			file := cmd.Args().First()
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			p := noteservice.BuildPreview(filepath.ToSlash(file), data, false, false)
			return printPreview(cmd.Root().Writer, p)
		},
	}
}

func printPreview(w io.Writer, p *noteservice.NotePreview) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", bold("note:"), p.Path)
	if p.Heading == nil {
		fmt.Fprintf(&b, "%s %s\n", bold("heading:"), dim("none"))
	} else {
		fmt.Fprintf(&b, "%s %s %s\n", bold("heading:"), p.Heading.Text,
			dim(fmt.Sprintf("(%s, line %d)", p.Heading.Style, p.Heading.Line+1)))
	}
	fmt.Fprintf(&b, "%s %s\n", bold("current slug:"), p.Decision.CurrentSlug)

	switch p.Decision.Outcome {
	case syncer.Renamed:
		fmt.Fprintf(&b, "%s %s\n", info("would rename to:"), success(p.Target))
	case syncer.AlreadySynchronized:
		fmt.Fprintf(&b, "%s\n", success("already synchronized"))
	default:
		fmt.Fprintf(&b, "%s\n", warning(strings.ReplaceAll(string(p.Decision.Outcome), "_", " ")))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
