package model

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationOrderError reports that an output directory or an
// evaluation-order constraint was requested before its prerequisite was
// established: the root output directory was not relocated yet, or a
// dependency subproject was not registered or not configured yet.
type ConfigurationOrderError struct {
	// Project is the subproject whose request was rejected.
	Project string

	// Prerequisite names what had to be established first, e.g. the
	// dependency subproject or "root output directory".
	Prerequisite string

	// Reason is a short description of the ordering violation.
	Reason string
}

func (e *ConfigurationOrderError) Error() string {
	return fmt.Sprintf("configuration order violated for subproject %q: %s (prerequisite: %s)",
		e.Project, e.Reason, e.Prerequisite)
}

// CyclicEvaluationOrderError reports that the evaluation-order graph
// contains a cycle. Cycle lists the subprojects along the cycle with the
// first element repeated at the end, e.g. [app wear app].
type CyclicEvaluationOrderError struct {
	Cycle []string
}

func (e *CyclicEvaluationOrderError) Error() string {
	if len(e.Cycle) == 0 {
		return "evaluation order contains a cycle"
	}
	return fmt.Sprintf("evaluation order contains a cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Project returns the first subproject on the cycle, used when a single
// offending name has to be reported.
func (e *CyclicEvaluationOrderError) Project() string {
	if len(e.Cycle) == 0 {
		return ""
	}
	return e.Cycle[0]
}

// InvalidNameError reports that a subproject name is empty, malformed, or
// collides with a sibling's name.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid subproject name %q: %s", e.Name, e.Reason)
}

// ExitCodeFor maps a configuration-time error to the CLI exit code that
// identifies its kind. Unknown errors map to ExitGeneralError.
func ExitCodeFor(err error) ExitCode {
	var (
		orderErr *ConfigurationOrderError
		cycleErr *CyclicEvaluationOrderError
		nameErr  *InvalidNameError
		cliErr   *CLIError
	)
	switch {
	case errors.As(err, &cliErr):
		return cliErr.Code
	case errors.As(err, &orderErr):
		return ExitConfigurationOrder
	case errors.As(err, &cycleErr):
		return ExitCyclicEvaluationOrder
	case errors.As(err, &nameErr):
		return ExitInvalidName
	default:
		return ExitGeneralError
	}
}
