package downloader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// extPriority orders archive formats within one asset base name. Lower
// wins: xz compresses fonts best, gzip next, zip last.
var extPriority = map[string]int{
	".tar.xz": 1,
	".tar.gz": 2,
	".tgz":    2,
	".zip":    3,
}

// BaseAndExt splits an asset filename into its base name and archive
// extension, treating the compound .tar.* extensions as one unit. The
// extension is returned lowercased; an unrecognized extension yields "".
func BaseAndExt(name string) (string, string) {
	lower := strings.ToLower(name)
	for _, ext := range types.ArchiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)], ext
		}
	}
	return name, ""
}

// SelectArchiveAsset picks the release asset to download. Assets sharing a
// base name are variants of the same archive, so the best compression wins
// within the group; across groups the smallest candidate wins, since font
// releases often ship a small fonts-only archive next to a full source
// archive.
func SelectArchiveAsset(assets []types.Asset) (types.Asset, error) {
	type candidate struct {
		asset types.Asset
		ext   string
	}
	groups := make(map[string]candidate)
	for _, asset := range assets {
		base, ext := BaseAndExt(asset.Name)
		if ext == "" {
			continue
		}
		current, seen := groups[base]
		if !seen {
			groups[base] = candidate{asset, ext}
			continue
		}
		if extPriority[ext] < extPriority[current.ext] ||
			(extPriority[ext] == extPriority[current.ext] && asset.Size < current.asset.Size) {
			groups[base] = candidate{asset, ext}
		}
	}
	if len(groups) == 0 {
		return types.Asset{}, fmt.Errorf("release has no archive assets")
	}

	best := make([]candidate, 0, len(groups))
	for _, c := range groups {
		best = append(best, c)
	}
	sort.Slice(best, func(i, j int) bool {
		if best[i].asset.Size != best[j].asset.Size {
			return best[i].asset.Size < best[j].asset.Size
		}
		return best[i].asset.Name < best[j].asset.Name
	})
	return best[0].asset, nil
}
