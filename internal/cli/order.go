// Package cli — order.go implements the "buildlayout order" command, which
// prints only the subproject configuration order.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewOrderCommand creates the "order" cobra command.
func NewOrderCommand() *cobra.Command {
	flags := &layoutFlags{}

	cmd := &cobra.Command{
		Use:   "order [dir]",
		Short: "Show the subproject configuration order",
		Long: `Print subprojects in the order their configuration is resolved, one per line.

Examples:
  buildlayout order android
  buildlayout order --anchor "" --json`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := planLayout(cmd.Context(), cmd, dirArg(args), flags)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if IsJSONOutput() {
				order := layout.EvaluationOrder
				if order == nil {
					order = []string{}
				}
				data, _ := json.MarshalIndent(map[string][]string{"evaluationOrder": order}, "", "  ")
				fmt.Fprintln(w, string(data))
				return nil
			}
			for _, name := range layout.EvaluationOrder {
				fmt.Fprintln(w, name)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
