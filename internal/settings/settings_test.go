package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/buildlayout/internal/model"
	"github.com/shinji-kodama/buildlayout/internal/relocate"
)

// writeFile creates dir/name with the given content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// absTempDir returns t.TempDir() with symlinks left as-is but made
// absolute, matching what the loaders compute.
func absTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)
	return dir
}

const sampleJSONC = `{
  // The Android host lives next to the Flutter sources.
  "rootProject": "android",
  "subprojects": [
    {"name": "app"},
    {"path": ":wear"},
    /* watch waits for wear as well as app */
    {"name": "watch", "evaluationDependsOn": [":wear"]},
  ],
}`

func TestLoad_JSONC(t *testing.T) {
	dir := absTempDir(t)
	path := writeFile(t, dir, JSONCFileName, sampleJSONC)

	s, err := Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, path, s.Source)
	assert.Equal(t, FormatJSONC, s.Format)
	assert.Equal(t, filepath.Join(dir, "android"), s.RootProject)
	assert.Equal(t, model.DefaultOutputDirName, s.OutputDirName)
	assert.Equal(t, model.DefaultEvaluationAnchor, s.EvaluationAnchor)
	require.Len(t, s.Subprojects, 3)
	assert.Equal(t, "app", s.Subprojects[0].Name)
	assert.Equal(t, ":wear", s.Subprojects[1].Path)
	assert.Equal(t, []string{":wear"}, s.Subprojects[2].EvaluationDependsOn)

	g, err := s.Graph()
	require.NoError(t, err)
	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "wear", "watch"}, order)
	assert.ElementsMatch(t, []string{"wear", "app"}, g.Dependencies("watch"))
}

func TestLoad_JSONCDisabledAnchor(t *testing.T) {
	dir := absTempDir(t)
	writeFile(t, dir, JSONCFileName, `{"evaluationAnchor": "", "outputDirName": "out", "subprojects": [{"name": "wear"}, {"name": "app"}]}`)

	s, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "", s.EvaluationAnchor)
	assert.Equal(t, "out", s.OutputDirName)
	assert.Equal(t, dir, s.RootProject)

	g, err := s.Graph()
	require.NoError(t, err)
	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"wear", "app"}, order)
}

func TestLoad_JSONCInvalid(t *testing.T) {
	dir := absTempDir(t)
	writeFile(t, dir, JSONCFileName, `{"subprojects": [}`)

	_, err := Load(context.Background(), dir)
	assert.Error(t, err)
}

const sampleHCL = `
root_project    = "${project_dir}/android"
output_dir_name = env.BUILDLAYOUT_TEST_OUT

subproject "app" {}

subproject "wear" {
  path = ":wear"
}

subproject "watch" {
  evaluation_depends_on = ["wear"]
}
`

func TestLoad_HCL(t *testing.T) {
	t.Setenv("BUILDLAYOUT_TEST_OUT", "out")
	dir := absTempDir(t)
	writeFile(t, dir, HCLFileName, sampleHCL)

	s, err := Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, FormatHCL, s.Format)
	assert.Equal(t, filepath.Join(dir, "android"), s.RootProject)
	assert.Equal(t, "out", s.OutputDirName)
	assert.Equal(t, model.DefaultEvaluationAnchor, s.EvaluationAnchor)
	require.Len(t, s.Subprojects, 3)
	assert.Equal(t, ":wear", s.Subprojects[1].Path)
	assert.Equal(t, []string{"wear"}, s.Subprojects[2].EvaluationDependsOn)
}

func TestLoad_HCLPathReachesLayout(t *testing.T) {
	t.Setenv("BUILDLAYOUT_TEST_OUT", "out")
	dir := absTempDir(t)
	writeFile(t, dir, HCLFileName, sampleHCL)

	s, err := Load(context.Background(), dir)
	require.NoError(t, err)
	g, err := s.Graph()
	require.NoError(t, err)

	layout, err := relocate.NewRelocator().Plan(context.Background(), s.RootProject, g)
	require.NoError(t, err)

	wear := layout.Project("wear")
	require.NotNil(t, wear)
	assert.Equal(t, ":wear", wear.Path)
	assert.Empty(t, layout.Project("app").Path)
}

func TestSettingsGraph_KeepsPathWithExplicitName(t *testing.T) {
	s := &Settings{
		EvaluationAnchor: model.DefaultEvaluationAnchor,
		Subprojects: []Subproject{
			{Name: "app", Path: ":app"},
			{Name: "wear", Path: ":watch:wear"},
			{Path: ":tv"},
		},
	}

	g, err := s.Graph()
	require.NoError(t, err)
	assert.Equal(t, ":app", g.Path("app"))
	assert.Equal(t, ":watch:wear", g.Path("wear"))
	assert.Equal(t, ":tv", g.Path("tv"))
}

func TestLoad_HCLInvalid(t *testing.T) {
	dir := absTempDir(t)
	writeFile(t, dir, HCLFileName, `subproject {`)

	_, err := Load(context.Background(), dir)
	assert.Error(t, err)
}

func TestLoad_HCLUnknownAttribute(t *testing.T) {
	dir := absTempDir(t)
	writeFile(t, dir, HCLFileName, `unknown = "x"`)

	_, err := Load(context.Background(), dir)
	assert.Error(t, err)
}

func TestLoad_JSONCTakesPriorityOverHCL(t *testing.T) {
	dir := absTempDir(t)
	writeFile(t, dir, JSONCFileName, `{"subprojects": [{"name": "app"}]}`)
	writeFile(t, dir, HCLFileName, `subproject "other" {}`)

	s, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, FormatJSONC, s.Format)
}

func TestLoad_GradleDiscovery(t *testing.T) {
	dir := absTempDir(t)
	writeFile(t, dir, "settings.gradle.kts", "rootProject.name = \"quiz_app\"\ninclude(\":app\", \":wear\")\n")

	s, err := Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, FormatGradle, s.Format)
	assert.Equal(t, dir, s.RootProject)
	assert.Equal(t, []Subproject{{Path: ":app"}, {Path: ":wear"}}, s.Subprojects)

	g, err := s.Graph()
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, g.Dependencies("wear"))
	assert.Equal(t, ":wear", g.Path("wear"))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir())

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitSettingsNotFound, cliErr.Code)
}

func TestLoadFile_Unsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.toml", "")

	_, err := LoadFile(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), JSONCFileName))
	assert.Equal(t, model.ExitSettingsNotFound, model.ExitCodeFor(err))
}

func TestGraph_Errors(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		check    func(t *testing.T, err error)
	}{
		{
			name: "duplicate names",
			settings: Settings{
				EvaluationAnchor: "app",
				Subprojects:      []Subproject{{Name: "app"}, {Path: ":feature:app"}},
			},
			check: func(t *testing.T, err error) {
				var nameErr *model.InvalidNameError
				assert.ErrorAs(t, err, &nameErr)
			},
		},
		{
			name: "empty name",
			settings: Settings{
				Subprojects: []Subproject{{}},
			},
			check: func(t *testing.T, err error) {
				var nameErr *model.InvalidNameError
				assert.ErrorAs(t, err, &nameErr)
			},
		},
		{
			name: "dependency on unknown subproject",
			settings: Settings{
				Subprojects: []Subproject{{Name: "wear", EvaluationDependsOn: []string{"tv"}}},
			},
			check: func(t *testing.T, err error) {
				var orderErr *model.ConfigurationOrderError
				assert.ErrorAs(t, err, &orderErr)
			},
		},
		{
			name: "anchor depends on a subproject",
			settings: Settings{
				EvaluationAnchor: "app",
				Subprojects: []Subproject{
					{Name: "app", EvaluationDependsOn: []string{"wear"}},
					{Name: "wear"},
				},
			},
			check: func(t *testing.T, err error) {
				var cycleErr *model.CyclicEvaluationOrderError
				assert.ErrorAs(t, err, &cycleErr)
			},
		},
		{
			name: "missing anchor",
			settings: Settings{
				EvaluationAnchor: ":app",
				Subprojects:      []Subproject{{Name: "wear"}},
			},
			check: func(t *testing.T, err error) {
				var orderErr *model.ConfigurationOrderError
				assert.ErrorAs(t, err, &orderErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.settings.Graph()
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOverrides_Apply(t *testing.T) {
	s := &Settings{RootProject: "/a", OutputDirName: "build", EvaluationAnchor: "app"}

	root := t.TempDir()
	name := "out"
	anchor := ""
	require.NoError(t, Overrides{RootProject: &root, OutputDirName: &name, EvaluationAnchor: &anchor}.Apply(s))

	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, abs, s.RootProject)
	assert.Equal(t, "out", s.OutputDirName)
	assert.Equal(t, "", s.EvaluationAnchor)

	// Nil overrides leave values untouched.
	require.NoError(t, Overrides{}.Apply(s))
	assert.Equal(t, "out", s.OutputDirName)
}
