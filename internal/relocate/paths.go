package relocate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/buildlayout/internal/model"
)

// ErrEmptyRootPath is returned when the root project path is empty.
var ErrEmptyRootPath = errors.New("root project path must not be empty")

// RootOutputDir is the relocated root build-output directory. The zero
// value means the root has not been relocated yet.
type RootOutputDir struct {
	path string
}

// String returns the directory path, or "" for the zero value.
func (d RootOutputDir) String() string {
	return d.path
}

// IsZero reports whether the root has not been relocated yet.
func (d RootOutputDir) IsZero() bool {
	return d.path == ""
}

// RelocateRoot computes the root project's build-output directory, one
// level above the root project: rootPath/../build.
//
// It only records the path; the directory is not created. Calling it twice
// with the same rootPath yields the same result.
func RelocateRoot(rootPath string) (RootOutputDir, error) {
	return RelocateRootAs(rootPath, model.DefaultOutputDirName)
}

// RelocateRootAs is RelocateRoot with a configurable output directory name.
func RelocateRootAs(rootPath, dirName string) (RootOutputDir, error) {
	if strings.TrimSpace(rootPath) == "" {
		return RootOutputDir{}, ErrEmptyRootPath
	}
	if err := validateDirName(dirName); err != nil {
		return RootOutputDir{}, err
	}

	// rootPath/../dirName, cleaned. Relative roots such as "." and ".."
	// still get a directory one level above them.
	return RootOutputDir{path: filepath.Join(rootPath, "..", dirName)}, nil
}

// RelocateSubproject computes a subproject's build-output directory:
// root/name.
//
// The root must already be relocated; passing the zero RootOutputDir is an
// ordering error.
func RelocateSubproject(name string, root RootOutputDir) (string, error) {
	if root.IsZero() {
		return "", &model.ConfigurationOrderError{
			Project:      name,
			Prerequisite: "root output directory",
			Reason:       "subproject output directory requested before the root was relocated",
		}
	}
	if err := model.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(root.path, name), nil
}

func validateDirName(dirName string) error {
	switch {
	case dirName == "":
		return fmt.Errorf("output directory name must not be empty")
	case dirName == "." || dirName == "..":
		return fmt.Errorf("output directory name %q must not refer to the current or parent directory", dirName)
	case strings.ContainsAny(dirName, `/\`):
		return fmt.Errorf("output directory name %q must be a single path element", dirName)
	}
	return nil
}
