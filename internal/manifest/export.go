package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// Exported is the shareable library shape: the manifest without hashes.
type Exported map[string]map[string]types.ExportedFontEntry

// Export strips per-machine data (hashes) from the manifest.
func Export(m Manifest) Exported {
	e := make(Exported, len(m))
	for repo, fonts := range m {
		e[repo] = make(map[string]types.ExportedFontEntry, len(fonts))
		for filename, entry := range fonts {
			e[repo][filename] = types.ExportedFontEntry{
				Type:     entry.Type,
				Version:  entry.Version,
				Owner:    entry.Owner,
				RepoName: entry.RepoName,
			}
		}
	}
	return e
}

// MarshalExport renders an exported library as indented JSON.
func MarshalExport(e Exported) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// WriteExport writes an exported library to a file.
func WriteExport(path string, e Exported) error {
	data, err := MarshalExport(e)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadExport loads an exported library file.
func ReadExport(path string) (Exported, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var e Exported
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return e, nil
}

// ImportPlan describes one repo to reinstall from an exported library.
type ImportPlan struct {
	RepoKey    string
	Owner      string
	RepoName   string
	Version    string
	Priorities []string
}

// PlanImports turns an exported library into install plans, sorted by repo
// key. Legacy exports omit owner/repo_name; for those the repo key must
// split into exactly owner/name or the entry is rejected with a warning and
// its siblings continue.
func PlanImports(e Exported) []ImportPlan {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var plans []ImportPlan
	for _, repo := range keys {
		fonts := e[repo]
		if len(fonts) == 0 {
			continue
		}

		filenames := make([]string, 0, len(fonts))
		for name := range fonts {
			filenames = append(filenames, name)
		}
		sort.Strings(filenames)
		first := fonts[filenames[0]]

		plan := ImportPlan{
			RepoKey: NormalizeKey(repo),
			Version: first.Version,
		}
		if plan.Version == "" {
			plan.Version = "latest"
		}
		if first.Type != "" {
			plan.Priorities = []string{first.Type}
		} else {
			plan.Priorities = []string{types.FormatStaticTTF}
		}

		if first.Owner != "" {
			plan.Owner = first.Owner
			plan.RepoName = first.RepoName
			if plan.RepoName == "" {
				plan.RepoName = repo
			}
		} else {
			// Old export format: the key itself is owner/name.
			parts := strings.Split(repo, "/")
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				logger.Warningf("Invalid repo format in import: %s", repo)
				continue
			}
			plan.Owner = parts[0]
			plan.RepoName = parts[1]
		}

		plans = append(plans, plan)
	}
	return plans
}
