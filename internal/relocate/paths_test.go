package relocate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/buildlayout/internal/model"
)

// TestRelocateRoot verifies that the root output directory is placed one
// level above the root project, not inside it.
func TestRelocateRoot(t *testing.T) {
	tests := []struct {
		name     string
		rootPath string
		want     string
	}{
		{
			name:     "android subdirectory of a flutter project",
			rootPath: "/home/user/project/android",
			want:     "/home/user/project/build",
		},
		{
			name:     "trailing separator is ignored",
			rootPath: "/home/user/project/android/",
			want:     "/home/user/project/build",
		},
		{
			name:     "unclean path is cleaned first",
			rootPath: "/home/user/project/./android/../android",
			want:     "/home/user/project/build",
		},
		{
			name:     "relative root",
			rootPath: "project/android",
			want:     "project/build",
		},
		{
			name:     "relative single element",
			rootPath: "android",
			want:     "build",
		},
		{
			name:     "current directory",
			rootPath: ".",
			want:     "../build",
		},
		{
			name:     "current directory with trailing separator",
			rootPath: "./",
			want:     "../build",
		},
		{
			name:     "parent directory",
			rootPath: "..",
			want:     "../../build",
		},
		{
			name:     "relative path climbing out",
			rootPath: "../android",
			want:     "../build",
		},
		{
			name:     "filesystem root",
			rootPath: "/",
			want:     "/build",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RelocateRoot(filepath.FromSlash(tt.rootPath))
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got.String())
			assert.False(t, got.IsZero())
		})
	}
}

// TestRelocateRoot_Idempotent verifies that repeated calls agree.
func TestRelocateRoot_Idempotent(t *testing.T) {
	root := filepath.FromSlash("/srv/app/android")

	first, err := RelocateRoot(root)
	require.NoError(t, err)
	second, err := RelocateRoot(root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestRelocateRoot_DoesNotCreateDirectory verifies that relocation is a
// pure computation.
func TestRelocateRoot_DoesNotCreateDirectory(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "android")

	got, err := RelocateRoot(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "build"), got.String())
	assert.NoDirExists(t, got.String())
}

// TestRelocateRoot_Empty verifies that an empty root path is rejected.
func TestRelocateRoot_Empty(t *testing.T) {
	_, err := RelocateRoot("")
	assert.ErrorIs(t, err, ErrEmptyRootPath)

	_, err = RelocateRoot("   ")
	assert.ErrorIs(t, err, ErrEmptyRootPath)
}

// TestRelocateRootAs verifies custom output directory names and their
// validation.
func TestRelocateRootAs(t *testing.T) {
	got, err := RelocateRootAs(filepath.FromSlash("/p/android"), "out")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/p/out"), got.String())

	for _, bad := range []string{"", ".", "..", "a/b", `a\b`} {
		t.Run("reject "+bad, func(t *testing.T) {
			_, err := RelocateRootAs(filepath.FromSlash("/p/android"), bad)
			assert.Error(t, err)
		})
	}
}

// TestRelocateSubproject verifies the root/name formula.
func TestRelocateSubproject(t *testing.T) {
	root, err := RelocateRoot(filepath.FromSlash("/home/user/project/android"))
	require.NoError(t, err)

	for _, name := range []string{"app", "wear", "watch", "lib.core"} {
		t.Run(name, func(t *testing.T) {
			got, err := RelocateSubproject(name, root)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root.String(), name), got)
		})
	}
}

// TestRelocateSubproject_EndToEnd covers the reference Flutter layout.
func TestRelocateSubproject_EndToEnd(t *testing.T) {
	root, err := RelocateRoot(filepath.FromSlash("/home/user/project/android"))
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/user/project/build"), root.String())

	app, err := RelocateSubproject("app", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/user/project/build/app"), app)
}

// TestRelocateSubproject_DistinctNamesDistinctDirs verifies that sibling
// subprojects never share an output directory.
func TestRelocateSubproject_DistinctNamesDistinctDirs(t *testing.T) {
	root, err := RelocateRoot(filepath.FromSlash("/p/android"))
	require.NoError(t, err)

	names := []string{"app", "App", "wear", "watch", "core", "core-ui", "core_ui", "a.b"}
	seen := make(map[string]string)
	for _, name := range names {
		dir, err := RelocateSubproject(name, root)
		require.NoError(t, err)
		if other, dup := seen[dir]; dup {
			t.Fatalf("%q and %q share output directory %s", name, other, dir)
		}
		seen[dir] = name
	}
}

// TestRelocateSubproject_BeforeRoot verifies that requesting a subproject
// output directory before the root is relocated is an ordering error.
func TestRelocateSubproject_BeforeRoot(t *testing.T) {
	_, err := RelocateSubproject("app", RootOutputDir{})

	var orderErr *model.ConfigurationOrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, "app", orderErr.Project)
	assert.Equal(t, "root output directory", orderErr.Prerequisite)
}

// TestRelocateSubproject_InvalidName verifies that names which could
// escape or alias the root output directory are rejected.
func TestRelocateSubproject_InvalidName(t *testing.T) {
	root, err := RelocateRoot(filepath.FromSlash("/p/android"))
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../etc", "a/b"} {
		t.Run(name, func(t *testing.T) {
			_, err := RelocateSubproject(name, root)
			var nameErr *model.InvalidNameError
			assert.ErrorAs(t, err, &nameErr)
		})
	}
}
