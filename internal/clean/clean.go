// Package clean implements the "clean" operation: recursive deletion of
// the relocated root output directory and nothing else.
package clean

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ErrUnsafeCleanTarget is returned when the target is empty, relative, or
// a filesystem root.
var ErrUnsafeCleanTarget = errors.New("refusing to clean unsafe target")

// Options controls a Clean call.
type Options struct {
	// DryRun reports what would be removed without removing it.
	DryRun bool
}

// Result describes the outcome of a Clean call.
type Result struct {
	// Target is the cleaned directory.
	Target string `json:"target" yaml:"target"`

	// Existed reports whether Target existed before the call.
	Existed bool `json:"existed" yaml:"existed"`

	// Removed reports whether Target was deleted. Always false on a dry run.
	Removed bool `json:"removed" yaml:"removed"`
}

// Clean recursively deletes target.
//
// Symlinks inside target are removed, not followed, so nothing outside
// target is touched. A missing target is not an error.
func Clean(ctx context.Context, target string, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	if err := checkTarget(target); err != nil {
		return nil, err
	}
	target = filepath.Clean(target)
	result := &Result{Target: target}

	if _, err := os.Lstat(target); err != nil {
		if !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "failed to inspect %s", target)
		}
		logger.Debug().Str("target", target).Msg("nothing to clean")
		return result, nil
	}
	result.Existed = true

	if opts.DryRun {
		logger.Info().Str("target", target).Msg("dry run: would remove")
		return result, nil
	}

	if err := os.RemoveAll(target); err != nil {
		return nil, eris.Wrapf(err, "failed to remove %s", target)
	}
	result.Removed = true
	logger.Info().Str("target", target).Msg("removed build output")
	return result, nil
}

func checkTarget(target string) error {
	if target == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafeCleanTarget)
	}
	if !filepath.IsAbs(target) {
		return fmt.Errorf("%w: %s is not absolute", ErrUnsafeCleanTarget, target)
	}
	cleaned := filepath.Clean(target)
	if filepath.Dir(cleaned) == cleaned {
		return fmt.Errorf("%w: %s is a filesystem root", ErrUnsafeCleanTarget, target)
	}
	return nil
}
