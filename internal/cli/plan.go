// Package cli — plan.go implements the "buildlayout plan" command.
//
// The plan command loads the build description, relocates the root output
// directory, resolves subproject configuration in evaluation order, and
// prints every subproject's output directory. With --manifest it also
// writes the layout as a YAML manifest for the build orchestrator.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/buildlayout/internal/manifest"
	"github.com/shinji-kodama/buildlayout/internal/model"
)

// planFlags holds the flag values for the plan command.
type planFlags struct {
	layoutFlags

	// manifestPath, when set, is where the YAML manifest is written.
	manifestPath string
}

// NewPlanCommand creates the "plan" cobra command.
func NewPlanCommand() *cobra.Command {
	flags := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan [dir]",
		Short: "Show the relocated build-output layout",
		Long: `Show where the root project and every subproject write their build output.

The build description is read from dir (default: current directory):
buildlayout.jsonc, buildlayout.hcl, or the Gradle settings script.

Examples:
  buildlayout plan android
  buildlayout plan --manifest ../build/layout.yaml
  buildlayout plan --json`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := planLayout(cmd.Context(), cmd, dirArg(args), &flags.layoutFlags)
			if err != nil {
				return err
			}
			if flags.manifestPath != "" {
				if err := manifest.Write(flags.manifestPath, layout); err != nil {
					return err
				}
				VerboseLog(cmd, "wrote manifest %s", flags.manifestPath)
			}
			return printPlanResult(cmd.OutOrStdout(), layout)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.manifestPath, "manifest", "", "Write the layout as a YAML manifest to this file")

	return cmd
}

// printPlanResult outputs the layout in text or JSON format, depending on
// the global --json flag.
func printPlanResult(w io.Writer, layout *model.Layout) error {
	if IsJSONOutput() {
		data, err := manifest.MarshalJSON(layout)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	return printPlanResultText(w, layout)
}

// printPlanResultText outputs the layout as a human-readable table:
//
//	Root project:     /home/user/project/android
//	Root output dir:  /home/user/project/build
//
//	#  SUBPROJECT  OUTPUT DIR                    AFTER
//	1  app         /home/user/project/build/app  -
//	2  wear        /home/user/project/build/wear app
func printPlanResultText(w io.Writer, layout *model.Layout) error {
	fmt.Fprintf(w, "Root project:     %s\n", layout.RootPath)
	fmt.Fprintf(w, "Root output dir:  %s\n", layout.RootOutputDir)

	if len(layout.Projects) == 0 {
		fmt.Fprintln(w, "\nNo subprojects found.")
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSUBPROJECT\tOUTPUT DIR\tAFTER")
	for i, p := range layout.Projects {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, p.Name, p.OutputDir, FormatDependencies(p.EvaluationDependsOn))
	}
	return tw.Flush()
}

// FormatDependencies joins dependency names with commas, or returns "-"
// when there are none.
func FormatDependencies(deps []string) string {
	if len(deps) == 0 {
		return "-"
	}
	return strings.Join(deps, ",")
}

// dirArg returns the optional directory argument, defaulting to ".".
func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
