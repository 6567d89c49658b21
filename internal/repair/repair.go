// Package repair detects and corrects manifest corruption: invalid repo
// keys, type/extension mismatches, cross-repo duplicate filenames, and
// on-disk drift of the recorded files.
package repair

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-font-manager/internal/fontanalyzer"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// ReinstallFunc re-runs the full install pipeline for a repo at version
// "latest", forced, with the caller's default priorities.
type ReinstallFunc func(repoKey, owner, repoName string) error

// Options carries the collaborators the planner needs.
type Options struct {
	// DestDir is the directory recorded files are expected to live in.
	DestDir string
	// Inspector validates on-disk fonts.
	Inspector fontanalyzer.Inspector
	// Reinstall is invoked by reinstall fixups. May be nil when the caller
	// only plans (reinstall fixups then fix nothing and report so).
	Reinstall ReinstallFunc
}

// Fixup is one proposed corrective action. Every detected issue becomes a
// fixup; the driver applies or declines each one explicitly.
type Fixup struct {
	Description string
	apply       func() int
}

// Apply executes the fixup and returns the number of issues fixed.
func (f Fixup) Apply() int {
	return f.apply()
}

type entryKey struct {
	repo     string
	filename string
}

// Plan inspects the manifest and returns the ordered fixup list. Each check
// excludes items already flagged by an earlier one. Iteration is over sorted
// repo keys and filenames, so the plan is deterministic and the
// lexicographically first repo wins duplicate-filename conflicts.
//
// The manifest is mutated only when fixups are applied.
func Plan(m manifest.Manifest, opts Options) []Fixup {
	var fixups []Fixup

	// 1. Repo keys that look like owner/name but do not parse as one.
	invalidRepos := make(map[string]bool)
	for _, repo := range m.SortedKeys() {
		if !strings.Contains(repo, "/") {
			continue // bare aliases (Google Fonts installs) are valid keys
		}
		parts := strings.Split(repo, "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			continue
		}
		invalidRepos[repo] = true
		repo := repo
		fixups = append(fixups, Fixup{
			Description: fmt.Sprintf("Remove invalid repo: %s", repo),
			apply: func() int {
				count := len(m[repo])
				delete(m, repo)
				return count
			},
		})
	}

	// 2. Records whose declared type implies a different file extension.
	invalidEntries := make(map[entryKey]bool)
	for _, repo := range m.SortedKeys() {
		if invalidRepos[repo] {
			continue
		}
		for _, filename := range m.SortedFilenames(repo) {
			entry := m[repo][filename]
			expected, known := types.FormatExtensions[entry.Type]
			if !known {
				continue
			}
			if strings.EqualFold(filepath.Ext(filename), expected) {
				continue
			}
			invalidEntries[entryKey{repo, filename}] = true
			repo, filename := repo, filename
			fixups = append(fixups, Fixup{
				Description: fmt.Sprintf("Remove invalid entry: %s/%s (type/extension mismatch)", repo, filename),
				apply: func() int {
					if _, ok := m[repo][filename]; !ok {
						return 0
					}
					if m.DeleteEntry(repo, filename) {
						logger.Infof("Removed empty repo %s", repo)
					}
					return 1
				},
			})
		}
	}

	// 3. Filenames present under more than one surviving repo: keep the
	// first occurrence, remove the rest.
	filenameRepos := make(map[string][]string)
	var dupFilenames []string
	for _, repo := range m.SortedKeys() {
		if invalidRepos[repo] {
			continue
		}
		for _, filename := range m.SortedFilenames(repo) {
			if invalidEntries[entryKey{repo, filename}] {
				continue
			}
			filenameRepos[filename] = append(filenameRepos[filename], repo)
			if len(filenameRepos[filename]) == 2 {
				dupFilenames = append(dupFilenames, filename)
			}
		}
	}
	sort.Strings(dupFilenames)
	dupRemovals := make(map[entryKey]bool)
	for _, filename := range dupFilenames {
		for _, repo := range filenameRepos[filename][1:] {
			dupRemovals[entryKey{repo, filename}] = true
			repo, filename := repo, filename
			fixups = append(fixups, Fixup{
				Description: fmt.Sprintf("Remove duplicate %s from %s", filename, repo),
				apply: func() int {
					if _, ok := m[repo][filename]; !ok {
						return 0
					}
					if m.DeleteEntry(repo, filename) {
						logger.Infof("Removed empty repo %s", repo)
					}
					return 1
				},
			})
		}
	}

	// 4. Per-file integrity for everything still standing. A repo needing a
	// fresh install is flagged once regardless of how many files triggered
	// it; a bare hash drift on an otherwise valid file is re-baselined in
	// place instead.
	reinstallReasons := make(map[string]string)
	for _, repo := range m.SortedKeys() {
		if invalidRepos[repo] {
			continue
		}

		if _, uniform := m.UniformVersion(repo); !uniform && len(m[repo]) > 0 {
			reinstallReasons[repo] = "mixed versions"
			continue
		}

		for _, filename := range m.SortedFilenames(repo) {
			key := entryKey{repo, filename}
			if invalidEntries[key] || dupRemovals[key] {
				continue
			}
			entry := m[repo][filename]
			path := filepath.Join(opts.DestDir, filename)

			if _, err := os.Stat(path); err != nil {
				reinstallReasons[repo] = "missing file(s)"
				continue
			}

			isVariable, err := opts.Inspector.IsVariable(path)
			if err != nil {
				reinstallReasons[repo] = "invalid font file(s)"
				continue
			}
			if strings.HasPrefix(entry.Type, "variable-") != isVariable {
				reinstallReasons[repo] = "variable/static mismatch"
				continue
			}

			currentHash, err := manifest.HashFile(path)
			if err != nil {
				reinstallReasons[repo] = "unreadable file(s)"
				continue
			}
			if currentHash != entry.Hash {
				repo, filename, currentHash := repo, filename, currentHash
				fixups = append(fixups, Fixup{
					Description: fmt.Sprintf("Update hash for modified file: %s/%s", repo, filename),
					apply: func() int {
						fonts, ok := m[repo]
						if !ok {
							return 0
						}
						entry, ok := fonts[filename]
						if !ok {
							return 0
						}
						entry.Hash = currentHash
						fonts[filename] = entry
						return 1
					},
				})
			}
		}
	}

	reinstallRepos := make([]string, 0, len(reinstallReasons))
	for repo := range reinstallReasons {
		reinstallRepos = append(reinstallRepos, repo)
	}
	sort.Strings(reinstallRepos)
	for _, repo := range reinstallRepos {
		repo := repo
		fixups = append(fixups, Fixup{
			Description: fmt.Sprintf("Reinstall repo (%s): %s", reinstallReasons[repo], repo),
			apply: func() int {
				entry, ok := m.FirstEntry(repo)
				if !ok {
					return 0
				}
				if opts.Reinstall == nil {
					logger.Errorf("No reinstall pipeline available for %s", repo)
					return 0
				}
				if err := opts.Reinstall(repo, entry.Owner, entry.RepoName); err != nil {
					logger.Errorf("Failed to reinstall %s: %v", repo, err)
					return 0
				}
				return 1
			},
		})
	}

	return fixups
}
