package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rotisserie/eris"
	"github.com/zclconf/go-cty/cty"

	"github.com/shinji-kodama/buildlayout/internal/model"
)

// hclRoot is the on-disk shape of buildlayout.hcl.
//
//	root_project      = "android"
//	output_dir_name   = "build"
//	evaluation_anchor = "app"
//
//	subproject "app" {}
//
//	subproject "wear" {
//	  path                  = ":wear"
//	  evaluation_depends_on = ["app"]
//	}
//
// Expressions may reference env.NAME (process environment) and
// project_dir (the directory holding the file).
type hclRoot struct {
	RootProject      *string         `hcl:"root_project,optional"`
	OutputDirName    *string         `hcl:"output_dir_name,optional"`
	EvaluationAnchor *string         `hcl:"evaluation_anchor,optional"`
	Subprojects      []hclSubproject `hcl:"subproject,block"`
}

type hclSubproject struct {
	Name                string   `hcl:"name,label"`
	Path                *string  `hcl:"path,optional"`
	EvaluationDependsOn []string `hcl:"evaluation_depends_on,optional"`
}

func loadHCL(path string) (*Settings, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, eris.Wrapf(diags, "failed to parse %s", path)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, evalContext(path), &root); diags.HasErrors() {
		return nil, eris.Wrapf(diags, "failed to decode %s", path)
	}

	s := &Settings{
		Source:           path,
		Format:           FormatHCL,
		OutputDirName:    model.DefaultOutputDirName,
		EvaluationAnchor: model.DefaultEvaluationAnchor,
	}
	if root.OutputDirName != nil {
		s.OutputDirName = *root.OutputDirName
	}
	if root.EvaluationAnchor != nil {
		s.EvaluationAnchor = *root.EvaluationAnchor
	}

	rel := ""
	if root.RootProject != nil {
		rel = *root.RootProject
	}
	var err error
	if s.RootProject, err = absDir(path, rel); err != nil {
		return nil, err
	}

	for _, sp := range root.Subprojects {
		entry := Subproject{Name: sp.Name, EvaluationDependsOn: sp.EvaluationDependsOn}
		if sp.Path != nil {
			entry.Path = *sp.Path
		}
		s.Subprojects = append(s.Subprojects, entry)
	}
	return s, nil
}

// evalContext exposes the process environment as env.NAME and the file's
// directory as project_dir.
func evalContext(path string) *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = cty.StringVal(value)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		dir = filepath.Dir(path)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":         cty.ObjectVal(env),
			"project_dir": cty.StringVal(dir),
		},
	}
}
