// Package updater brings installed repos up to their latest upstream
// version.
package updater

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/deploymenttheory/go-font-manager/internal/downloader"
	"github.com/deploymenttheory/go-font-manager/internal/googlefonts"
	"github.com/deploymenttheory/go-font-manager/internal/installer"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/uninstaller"
)

// Updater wires the update driver. The installer shares the manifest.
type Updater struct {
	Client        *downloader.Client
	Installer     *installer.Installer
	Manifest      manifest.Manifest
	ManifestPath  string
	FontDir       string
	ShowChangelog bool
}

// datePattern matches the commit-date pseudo-versions produced by
// contents-API installs. The lenient semver parser would read them as
// huge major versions with a prerelease, misordering them against real
// tags, so they always take the string path.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// IsNewer reports whether latest supersedes installed. Both sides are
// compared as semantic versions after stripping a leading "v"; if either
// fails to parse, a byte-wise string comparison decides. The fallback is
// only reliable for zero-padded ISO-8601 date versions.
func IsNewer(latest, installed string) bool {
	cleanLatest := strings.TrimPrefix(latest, "v")
	cleanInstalled := strings.TrimPrefix(installed, "v")

	if !datePattern.MatchString(cleanLatest) && !datePattern.MatchString(cleanInstalled) {
		vLatest, errL := semver.NewVersion(cleanLatest)
		vInstalled, errI := semver.NewVersion(cleanInstalled)
		if errL == nil && errI == nil {
			return vLatest.GreaterThan(vInstalled)
		}
	}
	return cleanLatest > cleanInstalled
}

// Targets resolves which manifest keys to check: every key when repoArgs
// is empty, otherwise each argument resolved the same way uninstall does.
// Unresolvable arguments warn and are dropped.
func Targets(m manifest.Manifest, repoArgs []string) []string {
	if len(repoArgs) == 0 {
		return m.SortedKeys()
	}
	var keys []string
	for _, repoArg := range repoArgs {
		key, ok := uninstaller.ResolveKey(m, repoArg)
		if !ok {
			logger.Warningf("No fonts installed from %s.", repoArg)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Update checks the given repos (all when repoArgs is empty) and
// reinstalls any with a newer upstream version. Returns the number of
// repos updated.
func (u *Updater) Update(repoArgs []string) (int, error) {
	if len(u.Manifest) == 0 {
		logger.Warningf("No installed fonts data found.")
		return 0, nil
	}

	updated := 0
	for _, key := range Targets(u.Manifest, repoArgs) {
		entry, ok := u.Manifest.FirstEntry(key)
		if !ok {
			continue
		}

		latest, body, found := u.fetchLatest(key, entry.Owner, entry.RepoName)
		if !found {
			continue
		}

		if !IsNewer(latest, entry.Version) {
			logger.Infof("%s/%s is up to date (%s).", entry.Owner, entry.RepoName, entry.Version)
			continue
		}

		logger.Infof("Updating %s/%s from %s to %s...", entry.Owner, entry.RepoName, entry.Version, latest)
		u.Manifest.RemoveRepoFiles(u.FontDir, key)
		if err := manifest.Save(u.ManifestPath, u.Manifest); err != nil {
			return updated, err
		}

		if err := u.Installer.Reinstall(key, entry.Owner, entry.RepoName); err != nil {
			logger.Errorf("Failed to update %s: %v", key, err)
			continue
		}
		if u.ShowChangelog && body != "" {
			logger.Infof("Changelog for %s/%s %s:\n%s", entry.Owner, entry.RepoName, latest, body)
		}
		updated++
	}
	return updated, nil
}

// fetchLatest determines the newest upstream version for a repo. Repos
// without releases fall back to the fonts/ directory commit date; Google
// Fonts subdirectory installs have no standalone upstream to ask.
func (u *Updater) fetchLatest(key, owner, repoName string) (version, body string, found bool) {
	release, err := u.Client.FetchRelease(owner, repoName, "latest")
	if err == nil {
		return release.Version, release.Body, true
	}
	if owner == googlefonts.Owner {
		// Subdirectory installs have no standalone upstream to reinstall
		// from, so they are left alone.
		logger.Warningf("Could not fetch latest for %s/%s: %v", owner, key, err)
		return "", "", false
	}
	dirVersion, dirErr := u.Client.PathVersion(owner, repoName, "fonts")
	if dirErr != nil {
		logger.Warningf("Could not fetch latest for %s/%s: %v", owner, key, err)
		return "", "", false
	}
	return dirVersion, "", true
}
