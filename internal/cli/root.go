// Package cli implements the cobra-based CLI commands for buildlayout.
//
// Each subcommand (plan, order, clean) is defined in its own file within
// this package. This file defines the root command that serves as the
// parent for all subcommands and handles global flags and logging.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/buildlayout/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose lowers the log level to debug.
	verbose bool

	// logFormat selects the log encoding on stderr: "console" or "json".
	logFormat string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action. It only provides
// help text, global flags, and the logger every subcommand receives through
// its context.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "buildlayout",
		Short: "Relocated build-output layout for multi-project builds",
		Long: `buildlayout computes where every subproject of a multi-project build
writes its output, and in which order subproject configuration must run.

The root output directory is relocated one level above the root project
(../build), so build artifacts never land inside the source tree of an
embedding project. Each subproject writes to <root output>/<name>, and
every subproject waits for the "app" subproject to be configured first.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// Every subcommand gets the configured logger on its context, so
		// packages below can use zerolog.Ctx without knowing about flags.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logFormat != "console" && logFormat != "json" {
				return model.NewCLIError(model.ExitGeneralError,
					fmt.Sprintf("invalid --log-format %q: valid values are console, json", logFormat))
			}
			logger := newLogger(cmd.ErrOrStderr(), logFormat, verbose)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format on stderr: console, json")

	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewOrderCommand())
	rootCmd.AddCommand(NewCleanCommand())

	return rootCmd
}

// newLogger builds the process logger. Console output is meant for people,
// JSON output for CI log collectors.
func newLogger(w io.Writer, format string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// Configuration-time errors (ordering, cycles, invalid names) each map to
// their own exit code so scripts can tell them apart; other errors exit 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitCodeFor(err)))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// stdout is reserved for successful command output, so errors go
		// to stderr even in JSON mode.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog writes a debug message through the command's logger. It is
// only visible with --verbose.
func VerboseLog(cmd *cobra.Command, format string, args ...interface{}) {
	zerolog.Ctx(cmd.Context()).Debug().Msgf(format, args...)
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
