package updater

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest    string
		installed string
		want      bool
	}{
		{"v4.1", "v4.0", true},
		{"4.1", "v4.0", true},
		{"v4.0", "4.0", false},
		{"v4.0", "v4.1", false},
		{"v4.10", "v4.9", true},
		{"2025-06-15", "2025-03-01", true},
		{"2025-03-01", "2025-06-15", false},
		{"2025-03-01", "2025-03-01", false},
		// Mixed semver and date falls back to byte-wise comparison.
		{"2025-06-15", "v4.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNewer(tt.latest, tt.installed),
			"IsNewer(%q, %q)", tt.latest, tt.installed)
	}
}

func TestTargets(t *testing.T) {
	m := manifest.Manifest{
		"rsms/inter": {"A.ttf": types.FontEntry{Owner: "rsms", RepoName: "inter"}},
		"roboto":     {"R.ttf": types.FontEntry{Owner: "thegooglefontsrepo", RepoName: "ofl/roboto"}},
	}

	assert.Equal(t, []string{"roboto", "rsms/inter"}, Targets(m, nil),
		"no arguments selects every installed repo, sorted")

	assert.Equal(t, []string{"rsms/inter"}, Targets(m, []string{"RSMS/Inter"}))
	assert.Equal(t, []string{"roboto"}, Targets(m, []string{"Roboto"}))
	assert.Empty(t, Targets(m, []string{"nobody/nothing"}))
}
