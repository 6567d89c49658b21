// Package cache keeps downloaded release archives on disk so repeated
// installs of the same version skip the network.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

const indexName = "index.json"

type indexEntry struct {
	Size       int64     `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

// Cache is a size-limited archive store. A zero limit disables it: Get
// always misses, Put is a no-op, and any leftover contents are purged on
// open.
type Cache struct {
	dir   string
	limit int64
	index map[string]indexEntry
}

// Key builds the cache key for a release archive. Owner may be empty for
// installs that have no meaningful owner, such as Google Fonts
// subdirectory downloads.
func Key(owner, repo, version, ext string) string {
	if owner == "" {
		return fmt.Sprintf("%s-%s%s", repo, version, ext)
	}
	return fmt.Sprintf("%s-%s-%s%s", owner, repo, version, ext)
}

// Open loads or creates a cache in dir with the given byte limit.
func Open(dir string, limit int64) (*Cache, error) {
	c := &Cache{dir: dir, limit: limit, index: make(map[string]indexEntry)}
	if limit <= 0 {
		if err := c.Purge(); err != nil {
			logger.Warningf("Failed to purge disabled cache: %v", err)
		}
		return c, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, indexName))
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache index: %w", err)
	}
	if err := json.Unmarshal(data, &c.index); err != nil {
		logger.Warningf("Cache index corrupt, starting fresh: %v", err)
		c.index = make(map[string]indexEntry)
	}
	return c, nil
}

func (c *Cache) saveIndex() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, indexName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache index: %w", err)
	}
	return nil
}

// Get returns the path of a cached archive and bumps its last access.
func (c *Cache) Get(key string) (string, bool) {
	if c.limit <= 0 {
		return "", false
	}
	entry, ok := c.index[key]
	if !ok {
		return "", false
	}
	path := filepath.Join(c.dir, key)
	if _, err := os.Stat(path); err != nil {
		delete(c.index, key)
		if err := c.saveIndex(); err != nil {
			logger.Warningf("Failed to update cache index: %v", err)
		}
		return "", false
	}
	entry.LastAccess = time.Now().UTC()
	c.index[key] = entry
	if err := c.saveIndex(); err != nil {
		logger.Warningf("Failed to update cache index: %v", err)
	}
	return path, true
}

// Put copies srcPath into the cache under key, evicting the least
// recently used archives until the total fits the limit. Archives larger
// than the whole limit are not cached.
func (c *Cache) Put(key, srcPath string) error {
	if c.limit <= 0 {
		return nil
	}
	info, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}
	if info.Size() > c.limit {
		logger.Debugf("Archive %s exceeds cache limit, not caching", key)
		return nil
	}

	if err := c.evictFor(info.Size(), key); err != nil {
		return err
	}

	dest := filepath.Join(c.dir, key)
	if err := copyFile(srcPath, dest); err != nil {
		return err
	}
	c.index[key] = indexEntry{Size: info.Size(), LastAccess: time.Now().UTC()}
	return c.saveIndex()
}

// evictFor removes oldest-access entries until incoming bytes fit.
func (c *Cache) evictFor(incoming int64, incomingKey string) error {
	total := incoming
	for key, entry := range c.index {
		if key != incomingKey {
			total += entry.Size
		}
	}
	if total <= c.limit {
		return nil
	}

	type aged struct {
		key   string
		entry indexEntry
	}
	victims := make([]aged, 0, len(c.index))
	for key, entry := range c.index {
		if key != incomingKey {
			victims = append(victims, aged{key, entry})
		}
	}
	sort.Slice(victims, func(i, j int) bool {
		return victims[i].entry.LastAccess.Before(victims[j].entry.LastAccess)
	})

	for _, v := range victims {
		if total <= c.limit {
			break
		}
		if err := os.Remove(filepath.Join(c.dir, v.key)); err != nil && !os.IsNotExist(err) {
			logger.Warningf("Failed to evict %s: %v", v.key, err)
			continue
		}
		logger.Debugf("Evicted %s from cache", v.key)
		delete(c.index, v.key)
		total -= v.entry.Size
	}
	return nil
}

// Purge empties the cache directory and index.
func (c *Cache) Purge() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	c.index = make(map[string]indexEntry)
	if c.limit <= 0 {
		return nil
	}
	return os.MkdirAll(c.dir, 0o755)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to copy to %s: %w", dest, copyErr)
	}
	return closeErr
}
