package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/buildlayout/internal/model"
	"github.com/shinji-kodama/buildlayout/internal/relocate"
	"github.com/shinji-kodama/buildlayout/internal/settings"
)

// layoutFlags holds the flags shared by every command that needs a
// planned layout. They override values from the build description.
type layoutFlags struct {
	settingsFile  string
	root          string
	anchor        string
	outputDirName string
}

// register binds the flags to cmd.
func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.settingsFile, "settings", "",
		"Build description file (buildlayout.jsonc, buildlayout.hcl or settings.gradle[.kts])")
	cmd.Flags().StringVar(&f.root, "root", "",
		"Root project directory (default: from the build description)")
	cmd.Flags().StringVar(&f.anchor, "anchor", model.DefaultEvaluationAnchor,
		`Subproject every other subproject waits for; "" disables`)
	cmd.Flags().StringVar(&f.outputDirName, "output-dir-name", model.DefaultOutputDirName,
		"Name of the relocated root output directory")
}

// overrides returns the flags the user actually set.
func (f *layoutFlags) overrides(cmd *cobra.Command) settings.Overrides {
	var o settings.Overrides
	if cmd.Flags().Changed("root") {
		o.RootProject = &f.root
	}
	if cmd.Flags().Changed("anchor") {
		o.EvaluationAnchor = &f.anchor
	}
	if cmd.Flags().Changed("output-dir-name") {
		o.OutputDirName = &f.outputDirName
	}
	return o
}

// planLayout loads the build description for dir, applies flag overrides,
// and plans the layout.
func planLayout(ctx context.Context, cmd *cobra.Command, dir string, flags *layoutFlags) (*model.Layout, error) {
	var (
		s   *settings.Settings
		err error
	)
	if flags.settingsFile != "" {
		s, err = settings.LoadFile(ctx, flags.settingsFile)
	} else {
		s, err = settings.Load(ctx, dir)
	}
	if err != nil {
		return nil, err
	}

	if err := flags.overrides(cmd).Apply(s); err != nil {
		return nil, err
	}

	g, err := s.Graph()
	if err != nil {
		return nil, wrapConfigurationError(s.Source, err)
	}

	relocator := relocate.NewRelocator()
	relocator.OutputDirName = s.OutputDirName
	relocator.Configure = func(ctx context.Context, node model.ProjectNode, root relocate.RootOutputDir) error {
		zerolog.Ctx(ctx).Debug().
			Str("subproject", node.Name).
			Strs("after", node.EvaluationDependsOn).
			Msg("configured subproject")
		return nil
	}

	layout, err := relocator.Plan(ctx, s.RootProject, g)
	if err != nil {
		return nil, wrapConfigurationError(s.Source, err)
	}
	return layout, nil
}

// wrapConfigurationError attaches the build description path and the
// matching exit code to a configuration-time error.
func wrapConfigurationError(source string, err error) error {
	return model.WrapCLIError(model.ExitCodeFor(err), fmt.Sprintf("invalid build description %s", source), err)
}
