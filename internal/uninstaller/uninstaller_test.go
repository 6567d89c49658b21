package uninstaller

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

func setup(t *testing.T) (manifest.Manifest, Options) {
	t.Helper()
	dir := t.TempDir()
	return manifest.Manifest{}, Options{
		FontDir:      dir,
		ManifestPath: filepath.Join(t.TempDir(), "installed.json"),
	}
}

func installFile(t *testing.T, m manifest.Manifest, opts Options, key, filename, content string) {
	t.Helper()
	path := filepath.Join(opts.FontDir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	hash, err := manifest.HashFile(path)
	require.NoError(t, err)
	if m[key] == nil {
		m[key] = map[string]types.FontEntry{}
	}
	m[key][filename] = types.FontEntry{
		Hash: hash, Type: types.FormatStaticTTF, Version: "v1",
		Owner: "rsms", RepoName: "inter",
	}
}

func TestUninstallMatchingHash(t *testing.T) {
	m, opts := setup(t)
	installFile(t, m, opts, "rsms/inter", "A.ttf", "aaa")

	deleted, err := Uninstall(m, []string{"rsms/inter"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, filepath.Join(opts.FontDir, "A.ttf"))
	assert.NotContains(t, m, "rsms/inter")
}

func TestUninstallKeepsModifiedWithoutForce(t *testing.T) {
	m, opts := setup(t)
	installFile(t, m, opts, "rsms/inter", "A.ttf", "aaa")
	require.NoError(t, os.WriteFile(filepath.Join(opts.FontDir, "A.ttf"), []byte("modified"), 0o644))

	deleted, err := Uninstall(m, []string{"rsms/inter"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.FileExists(t, filepath.Join(opts.FontDir, "A.ttf"))
	assert.Contains(t, m, "rsms/inter", "modified file keeps its record")
}

func TestUninstallForceDeletesModified(t *testing.T) {
	m, opts := setup(t)
	installFile(t, m, opts, "rsms/inter", "A.ttf", "aaa")
	require.NoError(t, os.WriteFile(filepath.Join(opts.FontDir, "A.ttf"), []byte("modified"), 0o644))
	opts.Force = true

	deleted, err := Uninstall(m, []string{"rsms/inter"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, filepath.Join(opts.FontDir, "A.ttf"))
}

func TestUninstallKeepsRecordForMissingFile(t *testing.T) {
	m, opts := setup(t)
	installFile(t, m, opts, "rsms/inter", "A.ttf", "aaa")
	installFile(t, m, opts, "rsms/inter", "B.ttf", "bbb")
	require.NoError(t, os.Remove(filepath.Join(opts.FontDir, "B.ttf")))

	deleted, err := Uninstall(m, []string{"rsms/inter"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	require.Contains(t, m, "rsms/inter", "partial survivors keep the repo entry")
	assert.Contains(t, m["rsms/inter"], "B.ttf")
	assert.NotContains(t, m["rsms/inter"], "A.ttf")
}

func TestUninstallUnknownRepo(t *testing.T) {
	m, opts := setup(t)

	deleted, err := Uninstall(m, []string{"nobody/nothing"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestResolveKey(t *testing.T) {
	m := manifest.Manifest{
		"rsms/inter": {"A.ttf": types.FontEntry{Owner: "rsms", RepoName: "inter"}},
		"roboto":     {"R.ttf": types.FontEntry{Owner: "thegooglefontsrepo", RepoName: "ofl/roboto"}},
	}

	key, ok := ResolveKey(m, "RSMS/Inter")
	assert.True(t, ok)
	assert.Equal(t, "rsms/inter", key)

	key, ok = ResolveKey(m, "Roboto")
	assert.True(t, ok)
	assert.Equal(t, "roboto", key)

	_, ok = ResolveKey(m, "nobody/nothing")
	assert.False(t, ok)

	_, ok = ResolveKey(m, "a/b/c")
	assert.False(t, ok)
}

func TestResolveKeyByUpstream(t *testing.T) {
	// An aliased install is still addressable by its upstream owner/name.
	m := manifest.Manifest{
		"inter": {"A.ttf": types.FontEntry{Owner: "rsms", RepoName: "inter"}},
	}

	key, ok := ResolveKey(m, "rsms/inter")
	assert.True(t, ok)
	assert.Equal(t, "inter", key)
}
