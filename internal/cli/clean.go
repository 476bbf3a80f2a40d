// Package cli — clean.go implements the "buildlayout clean" command.
//
// The clean command deletes the relocated root output directory, which
// holds every subproject's build output, and nothing outside it. The
// directory comes either from planning the build description or from a
// manifest previously written by "plan --manifest".
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/buildlayout/internal/clean"
	"github.com/shinji-kodama/buildlayout/internal/manifest"
	"github.com/shinji-kodama/buildlayout/internal/model"
	"github.com/shinji-kodama/buildlayout/internal/relocate"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	layoutFlags

	dryRun       bool
	fromManifest string
}

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean [dir]",
		Short: "Delete the relocated build output",
		Long: `Recursively delete the root output directory (../build relative to the
root project). Nothing outside that directory is touched.

Examples:
  buildlayout clean android
  buildlayout clean --dry-run
  buildlayout clean --from-manifest ../build/layout.yaml

With --from-manifest, the manifest's rootOutputDir must be named
--output-dir-name and sit one level above the manifest's rootPath.`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var target string
			if flags.fromManifest != "" {
				var err error
				target, err = manifestTarget(flags.fromManifest, flags.outputDirName)
				if err != nil {
					return err
				}
			} else {
				layout, err := planLayout(ctx, cmd, dirArg(args), &flags.layoutFlags)
				if err != nil {
					return err
				}
				target = layout.RootOutputDir
			}
			VerboseLog(cmd, "clean target %s", target)

			result, err := clean.Clean(ctx, target, clean.Options{DryRun: flags.dryRun})
			if err != nil {
				if errors.Is(err, clean.ErrUnsafeCleanTarget) {
					return model.WrapCLIError(model.ExitCleanRefused, "clean refused", err)
				}
				return err
			}
			printCleanResult(cmd.OutOrStdout(), result, flags.dryRun)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report what would be removed without removing it")
	cmd.Flags().StringVar(&flags.fromManifest, "from-manifest", "", "Read the root output directory from a manifest instead of planning")

	return cmd
}

// manifestTarget reads the root output directory from a manifest and
// checks that it is the directory planning would produce: named dirName
// and one level above the manifest's root project.
func manifestTarget(path, dirName string) (string, error) {
	layout, err := manifest.Read(path)
	if err != nil {
		return "", err
	}

	target := filepath.Clean(layout.RootOutputDir)
	if filepath.Base(target) != dirName {
		return "", model.WrapCLIError(model.ExitCleanRefused,
			fmt.Sprintf("manifest %s does not describe a %q output directory", path, dirName),
			fmt.Errorf("%w: %s", clean.ErrUnsafeCleanTarget, target))
	}
	if layout.RootPath == "" {
		return "", model.WrapCLIError(model.ExitCleanRefused,
			fmt.Sprintf("manifest %s has no rootPath", path),
			fmt.Errorf("%w: %s", clean.ErrUnsafeCleanTarget, target))
	}
	want, err := relocate.RelocateRootAs(layout.RootPath, dirName)
	if err != nil {
		return "", model.WrapCLIError(model.ExitCleanRefused, fmt.Sprintf("invalid manifest %s", path), err)
	}
	if want.String() != target {
		return "", model.WrapCLIError(model.ExitCleanRefused,
			fmt.Sprintf("manifest %s: rootOutputDir %s is not the output directory of %s", path, target, layout.RootPath),
			fmt.Errorf("%w: %s", clean.ErrUnsafeCleanTarget, target))
	}
	return target, nil
}

// printCleanResult outputs the clean outcome in text or JSON format.
func printCleanResult(w io.Writer, result *clean.Result, dryRun bool) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	switch {
	case !result.Existed:
		fmt.Fprintf(w, "Nothing to clean: %s does not exist\n", result.Target)
	case dryRun:
		fmt.Fprintf(w, "Would remove %s\n", result.Target)
	default:
		fmt.Fprintf(w, "Removed %s\n", result.Target)
	}
}
