// Package cli is the command line front end: it runs the native entry points
// against local files and prints the library inventory.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/okian/refxpp/internal/boundary"
	"github.com/okian/refxpp/pkg/logger"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"

	flagDebug = "debug"
)

var (
	version = "v0.0.1-default"
	commit  = ""

	errUnknownFormat = errors.New("unknown output format")
)

// app carries the writers and the logger shared by every command.
type app struct {
	out io.Writer
	log logger.Logger
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewCommand(os.Stdout, os.Stderr)
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps a calculation failure to its native status code so scripts
// can tell rejected input from a failed calculation. Usage errors exit 1.
func exitCode(err error) int {
	var be *boundary.Error
	if errors.As(err, &be) {
		return int(boundary.StatusOf(err))
	}
	return 1
}

// NewCommand builds the command tree. Results go to out, logs to errOut.
func NewCommand(out, errOut io.Writer) *urfave.Command {
	a := &app{out: out, log: logger.Nop()}
	return &urfave.Command{
		Name:            "refxpp",
		Version:         fmt.Sprintf("%s (commit: %s)", version, commit),
		Usage:           "Performance points and star rating for beatmap plays",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{Name: flagDebug, Usage: "Prints verbose logs to stderr (optional, default: false)"},
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			level := slog.LevelWarn
			if cmd.Bool(flagDebug) {
				level = slog.LevelDebug
			}
			l, err := logger.New(errOut, logger.FormatText, level)
			if err != nil {
				return ctx, err
			}
			a.log = l.Named("cli")
			return ctx, nil
		},
		Commands: []*urfave.Command{
			a.calculateCommand(),
			a.inventoryCommand(),
		},
	}
}

func printValue(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case formatText:
		_, err := fmt.Fprintln(w, v)
		return err
	}
	return fmt.Errorf("%w: %q", errUnknownFormat, format)
}
