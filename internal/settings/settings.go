// Package settings loads the build description that buildlayout plans
// against: which directory is the root project, which subprojects exist,
// and which subprojects must be configured before others.
//
// Three sources are supported, probed in this order:
//   - buildlayout.jsonc: JSON with comments, stripped with
//     github.com/tidwall/jsonc before decoding with encoding/json
//   - buildlayout.hcl: HCL decoded with github.com/hashicorp/hcl/v2
//   - settings.gradle.kts / settings.gradle: the Gradle settings script,
//     from which only the included project list is read
//
// Whatever the source, the result is a Settings value that can build a
// relocate.Graph.
package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/shinji-kodama/buildlayout/internal/discover"
	"github.com/shinji-kodama/buildlayout/internal/model"
	"github.com/shinji-kodama/buildlayout/internal/relocate"
)

const (
	// JSONCFileName is the JSONC build description file name.
	JSONCFileName = "buildlayout.jsonc"

	// HCLFileName is the HCL build description file name.
	HCLFileName = "buildlayout.hcl"
)

// Format identifies where a Settings value was loaded from.
type Format string

const (
	FormatJSONC  Format = "jsonc"
	FormatHCL    Format = "hcl"
	FormatGradle Format = "gradle"
)

// Subproject is one subproject entry of a build description.
type Subproject struct {
	// Name is the subproject name. When empty it is derived from Path.
	Name string

	// Path is the Gradle project path (":app"). Optional.
	Path string

	// EvaluationDependsOn lists subprojects (by name or Gradle path) whose
	// configuration must complete first.
	EvaluationDependsOn []string
}

// Settings is a loaded build description.
type Settings struct {
	// Source is the file the settings were loaded from.
	Source string

	// Format is the kind of file Source is.
	Format Format

	// RootProject is the absolute path of the root project directory.
	RootProject string

	// OutputDirName is the name of the relocated root output directory.
	OutputDirName string

	// EvaluationAnchor is the subproject every other subproject waits for.
	// Empty disables the rule.
	EvaluationAnchor string

	// Subprojects lists the subprojects in declaration order.
	Subprojects []Subproject
}

// Overrides are command-line values that take precedence over the file.
// Nil fields leave the loaded value alone.
type Overrides struct {
	RootProject      *string
	OutputDirName    *string
	EvaluationAnchor *string
}

// Apply copies every non-nil override onto s.
func (o Overrides) Apply(s *Settings) error {
	if o.RootProject != nil {
		abs, err := filepath.Abs(*o.RootProject)
		if err != nil {
			return eris.Wrapf(err, "failed to resolve root project %s", *o.RootProject)
		}
		s.RootProject = abs
	}
	if o.OutputDirName != nil {
		s.OutputDirName = *o.OutputDirName
	}
	if o.EvaluationAnchor != nil {
		s.EvaluationAnchor = *o.EvaluationAnchor
	}
	return nil
}

// Load finds and loads the build description in dir.
//
// Returns a CLIError with ExitSettingsNotFound if dir contains none of the
// supported files.
func Load(ctx context.Context, dir string) (*Settings, error) {
	logger := zerolog.Ctx(ctx)

	for _, name := range []string{JSONCFileName, HCLFileName} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			logger.Debug().Str("file", candidate).Msg("found build description")
			return LoadFile(ctx, candidate)
		}
	}

	gradle, err := discover.FindSettings(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitSettingsNotFound,
				fmt.Sprintf("no build description found in %s (looked for %s, %s, %s)",
					dir, JSONCFileName, HCLFileName, strings.Join(discover.SettingsFileNames, ", ")),
				err,
			)
		}
		return nil, eris.Wrapf(err, "failed to look for a Gradle settings script in %s", dir)
	}
	logger.Debug().Str("file", gradle).Msg("discovering subprojects from Gradle settings")
	return LoadFile(ctx, gradle)
}

// LoadFile loads a build description, choosing the parser from the file
// name.
func LoadFile(ctx context.Context, path string) (*Settings, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitSettingsNotFound,
				fmt.Sprintf("build description not found: %s", path),
				err,
			)
		}
		return nil, eris.Wrapf(err, "failed to stat build description %s", path)
	}

	var (
		s   *Settings
		err error
	)
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, ".jsonc"), strings.HasSuffix(base, ".json"):
		s, err = loadJSONC(path)
	case strings.HasSuffix(base, ".hcl"):
		s, err = loadHCL(path)
	case strings.HasPrefix(base, "settings.gradle"):
		s, err = loadGradle(path)
	default:
		return nil, fmt.Errorf("unsupported build description %s: expected .jsonc, .json, .hcl or settings.gradle[.kts]", path)
	}
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", path).
		Str("format", string(s.Format)).
		Int("subprojects", len(s.Subprojects)).
		Msg("loaded build description")
	return s, nil
}

func loadGradle(path string) (*Settings, error) {
	result, err := discover.ParseFile(path)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Source:           path,
		Format:           FormatGradle,
		OutputDirName:    model.DefaultOutputDirName,
		EvaluationAnchor: model.DefaultEvaluationAnchor,
	}
	// The Gradle root project is the directory holding the settings script.
	if s.RootProject, err = absDir(path, ""); err != nil {
		return nil, err
	}
	for _, p := range result.ProjectPaths {
		s.Subprojects = append(s.Subprojects, Subproject{Path: p})
	}
	return s, nil
}

// absDir resolves rel against the directory containing file. An empty rel
// means the directory itself.
func absDir(file, rel string) (string, error) {
	dir := filepath.Dir(file)
	if rel != "" {
		if filepath.IsAbs(rel) {
			dir = rel
		} else {
			dir = filepath.Join(dir, rel)
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", eris.Wrapf(err, "failed to resolve root project directory %s", dir)
	}
	return abs, nil
}

// Graph builds the evaluation-order graph described by s: every subproject
// is registered, explicit evaluation dependencies are declared, then the
// anchor rule is applied.
func (s *Settings) Graph() (*relocate.Graph, error) {
	g := relocate.NewGraph()

	names := make([]string, len(s.Subprojects))
	for i, sp := range s.Subprojects {
		if sp.Name == "" && sp.Path != "" {
			name, err := g.AddSubprojectAt(sp.Path)
			if err != nil {
				return nil, err
			}
			names[i] = name
			continue
		}
		if err := g.AddSubprojectNamed(sp.Name, sp.Path); err != nil {
			return nil, err
		}
		names[i] = sp.Name
	}

	for i, sp := range s.Subprojects {
		for _, dep := range sp.EvaluationDependsOn {
			if err := g.EnforceEvaluationOrder(names[i], model.ProjectNameFromPath(dep)); err != nil {
				return nil, err
			}
		}
	}

	if err := g.AnchorTo(model.ProjectNameFromPath(s.EvaluationAnchor)); err != nil {
		return nil, err
	}
	return g, nil
}
