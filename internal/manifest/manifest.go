// Package manifest serializes a planned layout for the external build
// orchestrator that consumes it.
//
// The YAML manifest is written with gopkg.in/yaml.v3 and carries a header
// comment marking it as generated. JSON is used for --json command output.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/buildlayout/internal/model"
)

// header is prepended to every generated YAML manifest.
const header = "# Generated by buildlayout. DO NOT EDIT.\n# Regenerate with: buildlayout plan --manifest <file>\n"

// MarshalYAML renders layout as a YAML manifest. Output is deterministic
// because Projects is already in evaluation order.
func MarshalYAML(layout *model.Layout) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(layout); err != nil {
		return nil, fmt.Errorf("failed to encode layout manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode layout manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalJSON renders layout as indented JSON.
func MarshalJSON(layout *model.Layout) ([]byte, error) {
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	return data, nil
}

// Write writes the YAML manifest to path, creating parent directories.
func Write(path string, layout *model.Layout) error {
	data, err := MarshalYAML(layout)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "failed to create directory for manifest %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write manifest %s", path)
	}
	return nil
}

// Read loads a manifest previously produced by Write.
func Read(path string) (*model.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read manifest %s", path)
	}

	var layout model.Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if layout.RootOutputDir == "" {
		return nil, fmt.Errorf("manifest %s has no rootOutputDir", path)
	}
	return &layout, nil
}
