// Package main provides the sessionlint CLI for validating Claude Code
// session logs against their schema generation.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sessionlint/internal/config"
	"sessionlint/internal/logging"
)

var buildVersion = "dev"

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Every validated line passed
	ExitLinesFailed = 1 // One or more lines failed validation
	ExitError       = 2 // Usage, configuration or precondition error
)

// FailedLinesError indicates that the run completed but the result did not
// meet the success contract.
type FailedLinesError struct {
	FailedLines int
	Errors      int
}

func (e *FailedLinesError) Error() string {
	if e.FailedLines > 0 {
		return fmt.Sprintf("%d lines failed validation", e.FailedLines)
	}
	return fmt.Sprintf("%d parse or file errors", e.Errors)
}

// globalOptions holds the persistent flags and what they resolve to.
type globalOptions struct {
	configPath string
	logLevel   string
	debug      bool

	cfg    *config.Config
	logger zerolog.Logger
}

func (g *globalOptions) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("determine current directory: %w", err)
		}
		cfg, err = config.Load(wd)
	}
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = g.logLevel
	}
	logger, err := logging.New(logging.Config{
		Level:  level,
		Debug:  g.debug,
		Pretty: true,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	g.cfg = cfg
	g.logger = logger
	if cfg.Path != "" {
		logger.Debug().Str("path", cfg.Path).Msg("config loaded")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "sessionlint",
		Short:         "Validate Claude Code session logs against versioned JSON Schemas",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "path to sessionlint.yaml (env: "+config.EnvConfig+")")
	flags.StringVar(&g.logLevel, "log-level", config.DefaultLogLevel, "log level: trace, debug, info, warn, or error")
	flags.BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(newValidateCmd(g))
	root.AddCommand(newDetectCmd(g))
	root.AddCommand(newSchemasCmd(g))

	return root
}

// exitCode maps an Execute error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var failed *FailedLinesError
	if errors.As(err, &failed) {
		return ExitLinesFailed
	}
	return ExitError
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sessionlint: %v\n", err)
	}
	os.Exit(exitCode(err))
}
