package settings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/buildlayout/internal/model"
)

// rawJSONC is the on-disk shape of buildlayout.jsonc.
//
//	{
//	  // relative to this file
//	  "rootProject": "android",
//	  "outputDirName": "build",
//	  "evaluationAnchor": "app",
//	  "subprojects": [
//	    {"name": "app"},
//	    {"path": ":wear", "evaluationDependsOn": [":app"]},
//	  ],
//	}
type rawJSONC struct {
	RootProject      string  `json:"rootProject"`
	OutputDirName    string  `json:"outputDirName"`
	EvaluationAnchor *string `json:"evaluationAnchor"`
	Subprojects      []struct {
		Name                string   `json:"name"`
		Path                string   `json:"path"`
		EvaluationDependsOn []string `json:"evaluationDependsOn"`
	} `json:"subprojects"`
}

func loadJSONC(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	// Strip comments and trailing commas before handing the bytes to
	// encoding/json.
	var raw rawJSONC
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s := &Settings{
		Source:           path,
		Format:           FormatJSONC,
		OutputDirName:    raw.OutputDirName,
		EvaluationAnchor: model.DefaultEvaluationAnchor,
	}
	if s.OutputDirName == "" {
		s.OutputDirName = model.DefaultOutputDirName
	}
	if raw.EvaluationAnchor != nil {
		s.EvaluationAnchor = *raw.EvaluationAnchor
	}
	if s.RootProject, err = absDir(path, raw.RootProject); err != nil {
		return nil, err
	}
	for _, sp := range raw.Subprojects {
		s.Subprojects = append(s.Subprojects, Subproject{
			Name:                sp.Name,
			Path:                sp.Path,
			EvaluationDependsOn: sp.EvaluationDependsOn,
		})
	}
	return s, nil
}
