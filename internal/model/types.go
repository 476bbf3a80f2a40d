// Package model defines the domain types for the buildlayout CLI.
//
// A build tree is made of one root project and any number of subprojects.
// Each subproject's build output is relocated under a single shared root
// output directory, and subprojects may declare that their configuration
// must wait for another subproject's configuration to complete.
package model

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultOutputDirName is the directory name used for the relocated root
// output directory when the build description does not override it.
const DefaultOutputDirName = "build"

// DefaultEvaluationAnchor is the subproject every other subproject waits
// for during configuration. It mirrors `evaluationDependsOn(":app")`.
const DefaultEvaluationAnchor = "app"

// EvaluationState represents how far a project node has progressed through
// the configuration phase. The transitions are:
//
//	Pending → Configured
//
// There is no way back: a configured node stays configured for the rest of
// the invocation.
type EvaluationState string

const (
	// StatePending indicates the node's configuration has not run yet.
	StatePending EvaluationState = "pending"

	// StateConfigured indicates the node's configuration has completed and
	// dependents may now read the values it defines.
	StateConfigured EvaluationState = "configured"
)

// String returns the string representation of EvaluationState.
func (s EvaluationState) String() string {
	return string(s)
}

// ProjectNode represents one buildable unit of the tree: a subproject such
// as the application module.
//
// OutputDir is computed eagerly during planning and is fixed for the rest
// of the invocation.
type ProjectNode struct {
	// Name is the unique identifier of the subproject among its siblings.
	// It is also the last path element of the subproject's output directory.
	Name string `json:"name" yaml:"name"`

	// Path is the Gradle-style project path (e.g. ":app"). Optional; used
	// only for display and for discovery diagnostics.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// OutputDir is the absolute or root-relative build-output directory.
	OutputDir string `json:"outputDir" yaml:"outputDir"`

	// EvaluationDependsOn lists the subprojects whose configuration must
	// complete before this node's configuration may begin.
	EvaluationDependsOn []string `json:"evaluationDependsOn,omitempty" yaml:"evaluationDependsOn,omitempty"`
}

// Layout is the result of one planning run: the relocated root output
// directory plus every subproject's output directory, listed in the order
// their configuration was resolved.
type Layout struct {
	// RootPath is the root project's directory as given by the caller.
	RootPath string `json:"rootPath" yaml:"rootPath"`

	// RootOutputDir is the relocated root build-output directory
	// (one level above RootPath).
	RootOutputDir string `json:"rootOutputDir" yaml:"rootOutputDir"`

	// EvaluationOrder is the sequence in which subproject configuration
	// was resolved.
	EvaluationOrder []string `json:"evaluationOrder" yaml:"evaluationOrder"`

	// Projects holds one entry per subproject, in EvaluationOrder.
	Projects []ProjectNode `json:"projects" yaml:"projects"`
}

// Project returns the node with the given name, or nil if the layout does
// not contain it.
func (l *Layout) Project(name string) *ProjectNode {
	for i := range l.Projects {
		if l.Projects[i].Name == name {
			return &l.Projects[i]
		}
	}
	return nil
}

// nameRegex validates subproject names: a single path element made of
// letters, digits, '_', '-' and '.', not starting with '.'. Leading dots are
// rejected so "." and ".." can never alias or escape the root output dir.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidateName checks if the given name is a valid subproject name.
// It returns an *InvalidNameError describing the problem, or nil.
func ValidateName(name string) error {
	if name == "" {
		return &InvalidNameError{Name: name, Reason: "subproject name must not be empty"}
	}
	if !nameRegex.MatchString(name) {
		return &InvalidNameError{
			Name:   name,
			Reason: "must be a single path element of letters, digits, '_', '-' or '.', not starting with '.'",
		}
	}
	return nil
}

// ProjectNameFromPath returns the project name for a Gradle project path.
// Gradle names a project after the last segment of its path, so
// ":feature:login" is named "login".
func ProjectNameFromPath(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.LastIndex(path, ":"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitSettingsNotFound indicates no build description could be found
	// (no buildlayout.jsonc, buildlayout.hcl or Gradle settings script).
	ExitSettingsNotFound ExitCode = 2

	// ExitConfigurationOrder indicates a ConfigurationOrderError.
	ExitConfigurationOrder ExitCode = 3

	// ExitCyclicEvaluationOrder indicates a CyclicEvaluationOrderError.
	ExitCyclicEvaluationOrder ExitCode = 4

	// ExitInvalidName indicates an InvalidNameError.
	ExitInvalidName ExitCode = 5

	// ExitCleanRefused indicates the clean target was rejected as unsafe.
	ExitCleanRefused ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
