// Package model defines the domain types and value objects for the
// buildlayout CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (ProjectNode, Layout) are transient representations computed
// once per invocation from the build description. Nothing is persisted
// between runs.
//
// The package also defines the configuration-time error taxonomy
// (ConfigurationOrderError, CyclicEvaluationOrderError, InvalidNameError),
// exit codes (ExitCode), and CLIError which carries an exit code for proper
// OS process exit handling.
package model
