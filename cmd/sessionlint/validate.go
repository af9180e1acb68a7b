package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sessionlint/internal/format"
	"sessionlint/internal/report"
	"sessionlint/internal/schema"
	"sessionlint/internal/store"
	"sessionlint/internal/validate"
)

func newValidateCmd(g *globalOptions) *cobra.Command {
	var (
		verbose      bool
		formatFlag   string
		limit        int
		workers      int
		recursive    bool
		strict       bool
		forceColor   bool
		forceNoColor bool
	)

	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a session file or every session file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if err := checkTarget(target); err != nil {
				return err
			}

			cfg := g.cfg
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.Format = formatFlag
			}
			if flags.Changed("limit") {
				cfg.ErrorLimit = limit
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("recursive") {
				cfg.Recursive = &recursive
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := g.logger.With().Str("component", "validate").Logger()

			registry, err := schema.NewRegistry(cfg.Schemas, schema.WithLogger(g.logger))
			if err != nil {
				return err
			}

			candidates, err := store.ListCandidates(store.ListOptions{
				Root:       target,
				Extensions: cfg.Extensions,
				Recursive:  cfg.IsRecursive(),
			})
			if err != nil {
				return err
			}
			for _, warn := range candidates.Warnings {
				logger.Warn().Err(warn).Msg("candidate discovery")
			}
			logger.Info().
				Str("target", target).
				Int("files", len(candidates.Paths)).
				Int("empty", candidates.Empty).
				Int("workers", cfg.Workers).
				Msg("validating")

			validator := validate.NewFileValidator(registry, g.logger)
			result := report.Aggregate(validator.ValidateAll(candidates.Paths, cfg.Workers))

			out := cmd.OutOrStdout()
			opts := format.Options{
				Format:  cfg.Format,
				Limit:   cfg.ErrorLimit,
				Verbose: verbose,
				Color:   format.ResolveColor(forceColor, forceNoColor, out),
				Width:   format.TerminalWidth(out),
				Strict:  strict,
			}
			if err := format.WriteReport(out, result, opts); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			if !result.Success(strict) {
				return &FailedLinesError{FailedLines: result.FailedLines(), Errors: len(result.Errors)}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "show per-file status and record snippets")
	flags.StringVar(&formatFlag, "format", "text", "output format: text, table, plain, json, or jsonl")
	flags.IntVar(&limit, "limit", format.DefaultLimit, "maximum errors listed in text output (negative lists all)")
	flags.IntVar(&workers, "workers", 1, "number of files validated concurrently")
	flags.BoolVar(&recursive, "recursive", false, "descend into subdirectories")
	flags.BoolVar(&strict, "strict", false, "also fail on JSON parse and file errors")
	flags.BoolVar(&forceColor, "color", false, "force colored output")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable colored output")

	return cmd
}

// checkTarget is the only precondition that aborts a run.
func checkTarget(target string) error {
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s does not exist", target)
		}
		return fmt.Errorf("stat target: %w", err)
	}
	return nil
}
