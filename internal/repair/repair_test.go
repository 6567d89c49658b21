package repair

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

type fakeInspector struct {
	variable map[string]bool
	broken   map[string]bool
}

func (f *fakeInspector) IsVariable(path string) (bool, error) {
	name := filepath.Base(path)
	if f.broken[name] {
		return false, errors.New("parse failure")
	}
	return f.variable[name], nil
}

func (f *fakeInspector) WeightClass(string) int { return 400 }
func (f *fakeInspector) IsItalic(string) bool   { return false }

func writeFont(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func entry(hash, typ string) types.FontEntry {
	return types.FontEntry{Hash: hash, Type: typ, Version: "v1", Owner: "o", RepoName: "r"}
}

func hashOf(t *testing.T, dir, name string) string {
	t.Helper()
	h, err := manifest.HashFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return h
}

func applyAll(fixups []Fixup) int {
	fixed := 0
	for _, f := range fixups {
		fixed += f.Apply()
	}
	return fixed
}

func TestPlanCleanManifestYieldsNoFixups(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "A.ttf", "static bytes")
	writeFont(t, dir, "V.ttf", "variable bytes")

	m := manifest.Manifest{
		"o/r": {
			"A.ttf": entry(hashOf(t, dir, "A.ttf"), types.FormatStaticTTF),
			"V.ttf": entry(hashOf(t, dir, "V.ttf"), types.FormatVariableTTF),
		},
	}
	insp := &fakeInspector{variable: map[string]bool{"V.ttf": true}}

	fixups := Plan(m, Options{DestDir: dir, Inspector: insp})
	assert.Empty(t, fixups)
}

func TestPlanRecordInstallRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "Inter-Regular.ttf", "inter regular")

	m := manifest.Manifest{}
	m.RecordInstall(dir, "rsms/inter", "rsms", "inter", "v4.0", types.FormatStaticTTF, []string{"Inter-Regular.ttf"})

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	assert.Empty(t, fixups, "a fresh install on an untouched filesystem needs no repair")
}

func TestPlanInvalidRepoKey(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Manifest{
		"owner/name/extra": {"A.ttf": entry("h", types.FormatStaticTTF)},
		"alias":            {},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Remove invalid repo: owner/name/extra", fixups[0].Description)

	assert.Equal(t, 1, fixups[0].Apply())
	assert.NotContains(t, m, "owner/name/extra")
	assert.Contains(t, m, "alias", "bare alias keys are valid")
}

func TestPlanTypeExtensionMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "font.otf", "otf bytes")

	m := manifest.Manifest{
		"o/r": {
			"font.ttf": entry("h", types.FormatOTF),
			"font.otf": entry(hashOf(t, dir, "font.otf"), types.FormatOTF),
		},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Remove invalid entry: o/r/font.ttf (type/extension mismatch)", fixups[0].Description)

	fixups[0].Apply()
	assert.NotContains(t, m["o/r"], "font.ttf")
	assert.Contains(t, m["o/r"], "font.otf")
}

func TestPlanDuplicateFilenameKeepsFirstRepo(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "f.ttf", "shared")
	h := hashOf(t, dir, "f.ttf")

	m := manifest.Manifest{
		"a": {"f.ttf": entry(h, types.FormatStaticTTF)},
		"b": {"f.ttf": entry(h, types.FormatStaticTTF)},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Remove duplicate f.ttf from b", fixups[0].Description)

	fixups[0].Apply()
	assert.Contains(t, m, "a")
	assert.NotContains(t, m, "b", "repo emptied by duplicate removal is dropped")
}

func TestPlanMissingFileFlagsReinstall(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Manifest{
		"o/r": {"Gone.ttf": entry("h", types.FormatStaticTTF)},
	}

	called := 0
	fixups := Plan(m, Options{
		DestDir:   dir,
		Inspector: &fakeInspector{},
		Reinstall: func(repoKey, owner, repoName string) error {
			called++
			assert.Equal(t, "o/r", repoKey)
			assert.Equal(t, "o", owner)
			assert.Equal(t, "r", repoName)
			return nil
		},
	})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Reinstall repo (missing file(s)): o/r", fixups[0].Description)
	assert.Equal(t, 1, fixups[0].Apply())
	assert.Equal(t, 1, called)
}

func TestPlanReinstallDeduplicatedPerRepo(t *testing.T) {
	dir := t.TempDir()
	m := manifest.Manifest{
		"z/r": {
			"Gone1.ttf": entry("h", types.FormatStaticTTF),
			"Gone2.ttf": entry("h", types.FormatStaticTTF),
		},
		"a/r": {"Gone3.ttf": entry("h", types.FormatStaticTTF)},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	require.Len(t, fixups, 2, "one reinstall per repo, however many files are missing")
	assert.Equal(t, "Reinstall repo (missing file(s)): a/r", fixups[0].Description)
	assert.Equal(t, "Reinstall repo (missing file(s)): z/r", fixups[1].Description)
}

func TestPlanVariableStaticMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "A.ttf", "bytes")

	m := manifest.Manifest{
		"o/r": {"A.ttf": entry(hashOf(t, dir, "A.ttf"), types.FormatVariableTTF)},
	}
	insp := &fakeInspector{} // A.ttf inspects as static

	fixups := Plan(m, Options{DestDir: dir, Inspector: insp})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Reinstall repo (variable/static mismatch): o/r", fixups[0].Description)
}

func TestPlanUnparsableFontFlagsReinstall(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "A.ttf", "garbage")

	m := manifest.Manifest{
		"o/r": {"A.ttf": entry(hashOf(t, dir, "A.ttf"), types.FormatStaticTTF)},
	}
	insp := &fakeInspector{broken: map[string]bool{"A.ttf": true}}

	fixups := Plan(m, Options{DestDir: dir, Inspector: insp})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Reinstall repo (invalid font file(s)): o/r", fixups[0].Description)
}

func TestPlanHashDriftUpdatesInPlace(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "A.ttf", "modified locally")

	m := manifest.Manifest{
		"o/r": {"A.ttf": entry("stale-hash", types.FormatStaticTTF)},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Update hash for modified file: o/r/A.ttf", fixups[0].Description)

	assert.Equal(t, 1, fixups[0].Apply())
	assert.Equal(t, hashOf(t, dir, "A.ttf"), m["o/r"]["A.ttf"].Hash)
	// The file itself is untouched.
	data, err := os.ReadFile(filepath.Join(dir, "A.ttf"))
	require.NoError(t, err)
	assert.Equal(t, "modified locally", string(data))
}

func TestPlanMixedVersionsFlagsReinstall(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "A.ttf", "a")
	writeFont(t, dir, "B.ttf", "b")

	m := manifest.Manifest{
		"o/r": {
			"A.ttf": {Hash: hashOf(t, dir, "A.ttf"), Type: types.FormatStaticTTF, Version: "v1", Owner: "o", RepoName: "r"},
			"B.ttf": {Hash: hashOf(t, dir, "B.ttf"), Type: types.FormatStaticTTF, Version: "v2", Owner: "o", RepoName: "r"},
		},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	require.Len(t, fixups, 1)
	assert.Equal(t, "Reinstall repo (mixed versions): o/r", fixups[0].Description)
}

func TestPlanChecksExcludeEarlierFlags(t *testing.T) {
	dir := t.TempDir()
	// "bad/key/shape" would also trip the duplicate and integrity checks if
	// earlier flags did not exclude it.
	m := manifest.Manifest{
		"bad/key/shape": {"f.ttf": entry("h", types.FormatStaticTTF)},
		"good":          {"f.ttf": entry("h", types.FormatOTF)},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	var descriptions []string
	for _, f := range fixups {
		descriptions = append(descriptions, f.Description)
	}

	require.Len(t, fixups, 2)
	assert.Equal(t, "Remove invalid repo: bad/key/shape", descriptions[0])
	// good's f.ttf is a type/extension mismatch, removed before the
	// integrity pass ever looks at it; no duplicate or reinstall fixups.
	assert.Equal(t, "Remove invalid entry: good/f.ttf (type/extension mismatch)", descriptions[1])
	for _, d := range descriptions {
		assert.False(t, strings.HasPrefix(d, "Reinstall"))
		assert.False(t, strings.HasPrefix(d, "Remove duplicate"))
	}
}

func TestApplyAllCounts(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "drift.ttf", "new bytes")

	m := manifest.Manifest{
		"a":   {"drift.ttf": entry("old", types.FormatStaticTTF)},
		"bad": {"wrong.woff": entry("h", types.FormatStaticTTF)},
	}

	fixups := Plan(m, Options{DestDir: dir, Inspector: &fakeInspector{}})
	assert.Equal(t, 2, applyAll(fixups))
}
