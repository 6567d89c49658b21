package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-font-manager/internal/types"
)

func TestExportDropsHashes(t *testing.T) {
	m := Manifest{
		"rsms/inter": {
			"Inter-Regular.ttf": types.FontEntry{
				Hash: "abc", Type: "static-ttf", Version: "v4.0",
				Owner: "rsms", RepoName: "inter",
			},
		},
	}

	e := Export(m)
	entry := e["rsms/inter"]["Inter-Regular.ttf"]
	assert.Equal(t, types.ExportedFontEntry{
		Type: "static-ttf", Version: "v4.0", Owner: "rsms", RepoName: "inter",
	}, entry)

	data, err := MarshalExport(e)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"hash"`)
}

func TestExportWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	e := Exported{
		"inter": {
			"Inter-Regular.ttf": types.ExportedFontEntry{
				Type: "static-ttf", Version: "v4.0", Owner: "rsms", RepoName: "inter",
			},
		},
	}

	require.NoError(t, WriteExport(path, e))
	loaded, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, e, loaded)
}

func TestPlanImportsModernEntries(t *testing.T) {
	e := Exported{
		"inter": {
			"Inter-Regular.ttf": types.ExportedFontEntry{
				Type: "static-ttf", Version: "v4.0", Owner: "rsms", RepoName: "inter",
			},
		},
	}

	plans := PlanImports(e)
	require.Len(t, plans, 1)
	assert.Equal(t, ImportPlan{
		RepoKey: "inter", Owner: "rsms", RepoName: "inter",
		Version: "v4.0", Priorities: []string{"static-ttf"},
	}, plans[0])
}

func TestPlanImportsLegacyKeySplit(t *testing.T) {
	e := Exported{
		"rsms/inter": {
			"Inter-Regular.ttf": types.ExportedFontEntry{Type: "static-ttf", Version: "v4.0"},
		},
		"not-a-repo-key": {
			"Font.ttf": types.ExportedFontEntry{Type: "static-ttf", Version: "v1"},
		},
		"too/many/parts": {
			"Font.ttf": types.ExportedFontEntry{Type: "static-ttf", Version: "v1"},
		},
	}

	plans := PlanImports(e)
	require.Len(t, plans, 1, "entries whose key does not split into owner/name are rejected")
	assert.Equal(t, "rsms", plans[0].Owner)
	assert.Equal(t, "inter", plans[0].RepoName)
}

func TestPlanImportsDefaults(t *testing.T) {
	e := Exported{
		"rsms/inter": {
			"Inter-Regular.ttf": types.ExportedFontEntry{},
		},
		"empty": {},
	}

	plans := PlanImports(e)
	require.Len(t, plans, 1)
	assert.Equal(t, "latest", plans[0].Version)
	assert.Equal(t, []string{types.FormatStaticTTF}, plans[0].Priorities)
}
