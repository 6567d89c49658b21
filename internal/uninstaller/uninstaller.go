// Package uninstaller removes installed fonts, deleting only files whose
// bytes still match their recorded hash unless forced.
package uninstaller

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/platform"
)

// Options carries the uninstall parameters.
type Options struct {
	FontDir      string
	ManifestPath string
	Force        bool
}

// ResolveKey maps a command-line repo argument to a manifest key. An
// owner/name argument matches its normalized key directly or, failing
// that, any entry recorded with that upstream. A bare argument is an
// alias key.
func ResolveKey(m manifest.Manifest, repoArg string) (string, bool) {
	if strings.Contains(repoArg, "/") {
		parts := strings.Split(repoArg, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			logger.Errorf("Invalid repo format: %s. Use owner/repo", repoArg)
			return "", false
		}
		if key := manifest.NormalizeKey(repoArg); m[key] != nil {
			return key, true
		}
		if key, ok := m.FindByUpstream(parts[0], parts[1]); ok {
			return key, true
		}
		return "", false
	}
	key := manifest.NormalizeKey(repoArg)
	if m[key] == nil {
		return "", false
	}
	return key, true
}

// Uninstall removes the fonts of the given repos and returns how many
// files were deleted. The manifest is saved once at the end; per-file
// problems keep the record and continue.
func Uninstall(m manifest.Manifest, repoArgs []string, opts Options) (int, error) {
	deleted := 0
	for _, repoArg := range repoArgs {
		key, ok := ResolveKey(m, repoArg)
		if !ok {
			logger.Warningf("No fonts installed from %s.", repoArg)
			continue
		}

		var removed []string
		for _, filename := range m.SortedFilenames(key) {
			entry := m[key][filename]
			path := filepath.Join(opts.FontDir, filename)

			if _, err := os.Stat(path); err != nil {
				logger.Warningf("Font %s not found in %s.", filename, opts.FontDir)
				continue
			}

			currentHash, err := manifest.HashFile(path)
			if err != nil {
				logger.Warningf("Could not hash %s: %v", filename, err)
				continue
			}
			if currentHash != entry.Hash && !opts.Force {
				logger.Warningf("Font %s has been modified. Use --force to delete.", filename)
				continue
			}

			if err := os.Remove(path); err != nil {
				logger.Errorf("Could not delete %s: %v", filename, err)
				continue
			}
			logger.Infof("Deleted %s from %s.", filename, repoArg)
			delete(m[key], filename)
			removed = append(removed, filename)
			deleted++
		}

		if len(m[key]) == 0 {
			delete(m, key)
		}
		if len(removed) > 0 {
			platform.UnregisterFonts(opts.FontDir, removed)
		}
	}

	if err := manifest.Save(opts.ManifestPath, m); err != nil {
		return deleted, err
	}
	if deleted > 0 {
		logger.Successf("Uninstalled %d font(s).", deleted)
	}
	return deleted, nil
}
