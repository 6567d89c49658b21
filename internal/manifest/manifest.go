// Package manifest persists the record of installed fonts: a JSON mapping
// from repo key to filename to installation record. The whole file is loaded,
// mutated in memory and written back; single-process sequential use is the
// only supported mode.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// Manifest maps lowercase repo keys to filename-keyed installation records.
type Manifest map[string]map[string]types.FontEntry

// NormalizeKey lowercases a repo key. Every lookup and mutation goes through
// normalized keys.
func NormalizeKey(key string) string {
	return strings.ToLower(key)
}

// Load reads the manifest file. A missing file yields an empty manifest; a
// corrupt file warns and yields an empty manifest rather than blocking every
// manifest-consuming command. Keys are normalized to lowercase and the
// legacy nested filename field is dropped.
func Load(path string) Manifest {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warningf("Could not load installed data: %v", err)
		}
		return Manifest{}
	}

	var raw Manifest
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warningf("Could not parse installed data: %v", err)
		return Manifest{}
	}

	m := make(Manifest, len(raw))
	for key, fonts := range raw {
		normalized := NormalizeKey(key)
		m[normalized] = make(map[string]types.FontEntry, len(fonts))
		for filename, entry := range fonts {
			entry.Filename = "" // outer key is canonical
			m[normalized][filename] = entry
		}
	}
	return m
}

// Save writes the manifest back to disk. A write failure is fatal to the
// calling command: losing track of already-moved files is worse than
// aborting.
func Save(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// HashFile returns the hex SHA-256 of a file's bytes. The manifest format
// mandates this algorithm.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// SortedKeys returns the repo keys in lexicographic order, the manifest's
// deterministic iteration order.
func (m Manifest) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedFilenames returns a repo's filenames in lexicographic order.
func (m Manifest) SortedFilenames(repoKey string) []string {
	fonts := m[NormalizeKey(repoKey)]
	names := make([]string, 0, len(fonts))
	for name := range fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UniformVersion returns the single version shared by every record under
// repoKey. ok is false when the repo is absent, empty, or mixes versions.
func (m Manifest) UniformVersion(repoKey string) (string, bool) {
	fonts, exists := m[NormalizeKey(repoKey)]
	if !exists || len(fonts) == 0 {
		return "", false
	}
	version := ""
	for _, entry := range fonts {
		if version == "" {
			version = entry.Version
		} else if entry.Version != version {
			return "", false
		}
	}
	return version, true
}

// FirstEntry returns the record of the lexicographically first filename under
// repoKey, used where the manifest assumes all records of a repo agree on
// owner and upstream name.
func (m Manifest) FirstEntry(repoKey string) (types.FontEntry, bool) {
	names := m.SortedFilenames(repoKey)
	if len(names) == 0 {
		return types.FontEntry{}, false
	}
	return m[NormalizeKey(repoKey)][names[0]], true
}

// FindByUpstream returns the repo key whose records point at owner/name,
// matched case-insensitively.
func (m Manifest) FindByUpstream(owner, name string) (string, bool) {
	for _, key := range m.SortedKeys() {
		entry, ok := m.FirstEntry(key)
		if !ok {
			continue
		}
		if strings.EqualFold(entry.Owner, owner) && strings.EqualFold(entry.RepoName, name) {
			return key, true
		}
	}
	return "", false
}

// RecordInstall hashes each moved file under destDir and upserts its record.
// Files that cannot be hashed are warned about and skipped; the rest of the
// batch proceeds. Returns the number of records written.
func (m Manifest) RecordInstall(destDir, repoKey, owner, repoName, version, formatLabel string, filenames []string) int {
	key := NormalizeKey(repoKey)
	if m[key] == nil {
		m[key] = make(map[string]types.FontEntry)
	}

	recorded := 0
	for _, filename := range filenames {
		hash, err := HashFile(filepath.Join(destDir, filename))
		if err != nil {
			logger.Warningf("Could not hash %s: %v", filename, err)
			continue
		}
		m[key][filename] = types.FontEntry{
			Hash:     hash,
			Type:     formatLabel,
			Version:  version,
			Owner:    owner,
			RepoName: repoName,
		}
		recorded++
	}
	return recorded
}

// RemoveRepoFiles deletes a repo's recorded files from destDir best-effort
// and clears its manifest entry. Deletion failures warn and do not stop the
// clear: the entry is being superseded either way.
func (m Manifest) RemoveRepoFiles(destDir, repoKey string) {
	key := NormalizeKey(repoKey)
	for _, filename := range m.SortedFilenames(key) {
		path := filepath.Join(destDir, filename)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warningf("Could not delete %s: %v", filename, err)
		}
	}
	delete(m, key)
}

// DeleteEntry removes one record, dropping the repo when it becomes empty.
// Reports whether the repo itself was removed.
func (m Manifest) DeleteEntry(repoKey, filename string) bool {
	key := NormalizeKey(repoKey)
	fonts, ok := m[key]
	if !ok {
		return false
	}
	delete(fonts, filename)
	if len(fonts) == 0 {
		delete(m, key)
		return true
	}
	return false
}
