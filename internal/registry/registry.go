// Package registry maintains a local copy of the community font registry,
// a JSON index mapping font names to their GitHub repositories.
package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

// DefaultURL is where the registry index is published.
const DefaultURL = "https://raw.githubusercontent.com/deploymenttheory/font-registry/main/registry.json"

// Entry is one registry record.
type Entry struct {
	DisplayName string `json:"display_name"`
	Link        string `json:"link"`
}

type checkMetadata struct {
	CheckedAt time.Time `json:"checked_at"`
}

// Registry fetches and queries the index. The local copy lives in dir and
// is refreshed at most once per interval unless forced.
type Registry struct {
	dir      string
	url      string
	interval time.Duration
	client   *http.Client
}

// New creates a Registry backed by dir.
func New(dir string, interval time.Duration) *Registry {
	return &Registry{
		dir:      dir,
		url:      DefaultURL,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetURL overrides the index URL. Used by tests.
func (r *Registry) SetURL(u string) {
	r.url = u
}

func (r *Registry) indexPath() string    { return filepath.Join(r.dir, "registry.json") }
func (r *Registry) metadataPath() string { return filepath.Join(r.dir, "last-check.json") }

// Update refreshes the local copy of the index. Without force, the fetch
// is skipped while the last successful check is newer than the interval.
func (r *Registry) Update(force bool) error {
	if !force && !r.due() {
		logger.Debugf("Registry checked recently, skipping update")
		return nil
	}

	resp, err := r.client.Get(r.url)
	if err != nil {
		return fmt.Errorf("failed to fetch registry: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching registry", resp.StatusCode)
	}

	var index map[string]Entry
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return fmt.Errorf("failed to parse registry index: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry index: %w", err)
	}
	if err := os.WriteFile(r.indexPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry index: %w", err)
	}

	meta, _ := json.Marshal(checkMetadata{CheckedAt: time.Now().UTC()})
	if err := os.WriteFile(r.metadataPath(), meta, 0o644); err != nil {
		logger.Warningf("Failed to record registry check time: %v", err)
	}
	logger.Debugf("Registry updated, %d entries", len(index))
	return nil
}

func (r *Registry) due() bool {
	data, err := os.ReadFile(r.metadataPath())
	if err != nil {
		return true
	}
	var meta checkMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return true
	}
	if _, err := os.Stat(r.indexPath()); err != nil {
		return true
	}
	return time.Since(meta.CheckedAt) > r.interval
}

// Lookup resolves a font name to its GitHub owner and repo. The name is
// matched against normalized registry keys and display names. A missing
// local index triggers an update first.
func (r *Registry) Lookup(name string) (owner, repo string, found bool) {
	index, err := r.load()
	if err != nil {
		logger.Debugf("Registry unavailable: %v", err)
		return "", "", false
	}

	want := Normalize(name)
	for key, entry := range index {
		if Normalize(key) != want && Normalize(entry.DisplayName) != want {
			continue
		}
		o, n, err := ownerRepoFromLink(entry.Link)
		if err != nil {
			logger.Warningf("Registry entry %s has an invalid link: %v", key, err)
			return "", "", false
		}
		return o, n, true
	}
	return "", "", false
}

func (r *Registry) load() (map[string]Entry, error) {
	data, err := os.ReadFile(r.indexPath())
	if os.IsNotExist(err) {
		if err := r.Update(true); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(r.indexPath())
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	var index map[string]Entry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse registry index: %w", err)
	}
	return index, nil
}

// Normalize folds a font name for matching: lowercased with spaces,
// hyphens, and underscores removed.
func Normalize(name string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "")
	return replacer.Replace(strings.ToLower(name))
}

// ownerRepoFromLink extracts owner and repo from a github.com URL.
func ownerRepoFromLink(link string) (string, string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", "", err
	}
	if !strings.EqualFold(u.Host, "github.com") {
		return "", "", fmt.Errorf("not a github.com link: %s", link)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("link has no owner/repo: %s", link)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
