package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-font-manager/internal/types"
)

func TestBaseAndExt(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantExt  string
	}{
		{"Inter-4.0.zip", "Inter-4.0", ".zip"},
		{"Inter-4.0.tar.gz", "Inter-4.0", ".tar.gz"},
		{"Inter-4.0.tar.xz", "Inter-4.0", ".tar.xz"},
		{"Inter-4.0.tgz", "Inter-4.0", ".tgz"},
		{"Inter-4.0.TAR.XZ", "Inter-4.0", ".tar.xz"},
		{"README.md", "README.md", ""},
		{"inter.ttf", "inter.ttf", ""},
	}
	for _, tt := range tests {
		base, ext := BaseAndExt(tt.name)
		assert.Equal(t, tt.wantBase, base, tt.name)
		assert.Equal(t, tt.wantExt, ext, tt.name)
	}
}

func TestSelectArchiveAssetPrefersBetterCompression(t *testing.T) {
	assets := []types.Asset{
		{Name: "Inter-4.0.zip", Size: 100},
		{Name: "Inter-4.0.tar.gz", Size: 90},
		{Name: "Inter-4.0.tar.xz", Size: 95},
	}

	got, err := SelectArchiveAsset(assets)
	require.NoError(t, err)
	assert.Equal(t, "Inter-4.0.tar.xz", got.Name, "xz wins within a group even when slightly larger")
}

func TestSelectArchiveAssetPrefersSmallerGroup(t *testing.T) {
	assets := []types.Asset{
		{Name: "source-code.tar.xz", Size: 5000},
		{Name: "fonts-only.zip", Size: 200},
	}

	got, err := SelectArchiveAsset(assets)
	require.NoError(t, err)
	assert.Equal(t, "fonts-only.zip", got.Name, "across groups the smaller archive wins")
}

func TestSelectArchiveAssetIgnoresNonArchives(t *testing.T) {
	assets := []types.Asset{
		{Name: "Inter.ttf", Size: 10},
		{Name: "CHANGELOG.md", Size: 1},
		{Name: "Inter-4.0.zip", Size: 500},
	}

	got, err := SelectArchiveAsset(assets)
	require.NoError(t, err)
	assert.Equal(t, "Inter-4.0.zip", got.Name)
}

func TestSelectArchiveAssetNoArchives(t *testing.T) {
	_, err := SelectArchiveAsset([]types.Asset{{Name: "Inter.ttf"}})
	assert.Error(t, err)

	_, err = SelectArchiveAsset(nil)
	assert.Error(t, err)
}

func TestSelectArchiveAssetTiesBreakByName(t *testing.T) {
	assets := []types.Asset{
		{Name: "b.zip", Size: 100},
		{Name: "a.zip", Size: 100},
	}

	got, err := SelectArchiveAsset(assets)
	require.NoError(t, err)
	assert.Equal(t, "a.zip", got.Name)
}
