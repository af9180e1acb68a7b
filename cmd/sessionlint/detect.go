package main

import (
	"strings"

	"github.com/spf13/cobra"

	"sessionlint/internal/format"
	"sessionlint/internal/store"
	"sessionlint/internal/validate"
)

func newDetectCmd(g *globalOptions) *cobra.Command {
	var (
		formatFlag string
		noHeader   bool
		recursive  bool
	)

	cmd := &cobra.Command{
		Use:   "detect <path>",
		Short: "Show the CLI version and schema generation detected for each session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if err := checkTarget(target); err != nil {
				return err
			}

			if !cmd.Flags().Changed("recursive") {
				recursive = g.cfg.IsRecursive()
			}
			candidates, err := store.ListCandidates(store.ListOptions{
				Root:       target,
				Extensions: g.cfg.Extensions,
				Recursive:  recursive,
			})
			if err != nil {
				return err
			}
			for _, warn := range candidates.Warnings {
				g.logger.Warn().Err(warn).Msg("candidate discovery")
			}

			rows := make([]format.DetectionRow, 0, len(candidates.Paths))
			for _, path := range candidates.Paths {
				rows = append(rows, detectionRow(path))
			}

			return format.WriteDetections(cmd.OutOrStdout(), rows, !noHeader, strings.ToLower(formatFlag))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for plain and table output")
	flags.BoolVar(&recursive, "recursive", false, "descend into subdirectories")

	return cmd
}

func detectionRow(path string) format.DetectionRow {
	fd, err := validate.DetectFile(path)
	if err != nil {
		return format.DetectionRow{Path: path, Error: err.Error()}
	}

	row := format.DetectionRow{
		Path:        path,
		RawVersion:  fd.Detection.Raw,
		Records:     fd.Records,
		ParseErrors: fd.ParseErrors,
	}
	switch {
	case fd.Records == 0:
		row.Generation = "empty"
	case !fd.Detection.Supported():
		row.Generation = "unsupported"
	default:
		row.Schema = fd.Detection.Key.String()
		row.Generation = fd.Detection.Key.Name()
		if fd.Detection.Raw == "" {
			row.Generation += " (inferred)"
		}
	}
	return row
}
