package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/AlifSrSE/css/pkg/observability"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"

	debugFlagName  = "debug"
	formatFlagName = "format"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newApp(out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "creditctl",
		Version:   fmt.Sprintf("%s - (commit: %s)", version, commit),
		Usage:     "Offline credit scoring for small-business loan applications",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlagName,
				Usage: "Prints verbose logs to stderr (optional, default: false)",
			},
			&cli.StringFlag{
				Name:  formatFlagName,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
		},
		Commands: newCommands(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := "warn"
			if cmd.Bool(debugFlagName) {
				level = "debug"
			}
			slog.SetDefault(observability.InitLogger(observability.LogConfig{
				Level:  level,
				Format: "text",
				Output: errOut,
			}))

			switch f := cmd.String(formatFlagName); f {
			case formatJSON, formatYAML, "yml":
			default:
				return ctx, fmt.Errorf("unsupported output format %q", f)
			}
			return ctx, nil
		},
	}
}

// encode writes v to the root command's writer in the selected format.
func encode(cmd *cli.Command, v any) error {
	w := cmd.Root().Writer
	if f := cmd.Root().String(formatFlagName); f == formatYAML || f == "yml" {
		// Round-trip through JSON so value objects and decimals keep their
		// wire form.
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return yaml.NewEncoder(w).Encode(doc)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
