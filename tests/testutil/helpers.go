// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"config-packager/internal/types"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// CopyTree copies the directory src into dst.
func CopyTree(t *testing.T, src string, dst string) {
	t.Helper()
	err := filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err)
}

// SiteSettings copies the fixture site and bundle file into a temporary
// directory and returns settings pointing at the copy.
func SiteSettings(t *testing.T) types.Settings {
	t.Helper()
	root := RepoRoot(t)
	work := t.TempDir()
	CopyTree(t, filepath.Join(root, "fixtures", "site"), work)
	data, err := os.ReadFile(filepath.Join(root, "fixtures", "bundles.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(work, "bundles.yaml"), data, 0o644))

	settings := types.DefaultSettings()
	settings.ActiveDir = filepath.Join(work, "active")
	settings.ExportFolder = filepath.Join(work, "packages")
	settings.BundleFile = filepath.Join(work, "bundles.yaml")
	settings.ArchiveDir = filepath.Join(work, "archives")
	settings.Workers = 2
	return settings
}
