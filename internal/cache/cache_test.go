package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rsms-inter-v4.0.zip", Key("rsms", "inter", "v4.0", ".zip"))
	assert.Equal(t, "roboto-2025-06-15.zip", Key("", "roboto", "2025-06-15", ".zip"))
}

func TestPutGetRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir(), 1<<20)
	require.NoError(t, err)

	src := writeArchive(t, 100)
	require.NoError(t, c.Put("rsms-inter-v4.0.zip", src))

	path, ok := c.Get("rsms-inter-v4.0.zip")
	require.True(t, ok)
	assert.FileExists(t, path)

	_, ok = c.Get("absent.zip")
	assert.False(t, ok)
}

func TestIndexSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, 1<<20)
	require.NoError(t, err)
	require.NoError(t, c.Put("a.zip", writeArchive(t, 10)))

	reopened, err := Open(dir, 1<<20)
	require.NoError(t, err)
	_, ok := reopened.Get("a.zip")
	assert.True(t, ok)
}

func TestGetDropsMissingFile(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, 1<<20)
	require.NoError(t, err)
	require.NoError(t, c.Put("a.zip", writeArchive(t, 10)))

	require.NoError(t, os.Remove(filepath.Join(dir, "a.zip")))
	_, ok := c.Get("a.zip")
	assert.False(t, ok, "an index entry whose file vanished is a miss")
}

func TestEvictionIsOldestAccessFirst(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, 250)
	require.NoError(t, err)

	require.NoError(t, c.Put("old.zip", writeArchive(t, 100)))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, c.Put("new.zip", writeArchive(t, 100)))
	time.Sleep(5 * time.Millisecond)

	// Touch old so new becomes the eviction candidate.
	_, ok := c.Get("old.zip")
	require.True(t, ok)
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, c.Put("third.zip", writeArchive(t, 100)))

	_, ok = c.Get("old.zip")
	assert.True(t, ok, "recently accessed archive survives")
	_, ok = c.Get("new.zip")
	assert.False(t, ok, "least recently accessed archive was evicted")
	_, ok = c.Get("third.zip")
	assert.True(t, ok)
}

func TestOversizeArchiveNotCached(t *testing.T) {
	c, err := Open(t.TempDir(), 50)
	require.NoError(t, err)

	require.NoError(t, c.Put("big.zip", writeArchive(t, 100)))
	_, ok := c.Get("big.zip")
	assert.False(t, ok)
}

func TestZeroLimitDisablesAndPurges(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, 1<<20)
	require.NoError(t, err)
	require.NoError(t, c.Put("a.zip", writeArchive(t, 10)))

	disabled, err := Open(dir, 0)
	require.NoError(t, err)
	assert.NoDirExists(t, dir, "opening with size 0 purges existing contents")

	require.NoError(t, disabled.Put("b.zip", writeArchive(t, 10)))
	_, ok := disabled.Get("b.zip")
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, 1<<20)
	require.NoError(t, err)
	require.NoError(t, c.Put("a.zip", writeArchive(t, 10)))

	require.NoError(t, c.Purge())
	_, ok := c.Get("a.zip")
	assert.False(t, ok)
	assert.DirExists(t, dir, "an enabled cache keeps its directory after purge")
}

func TestOpenToleratesCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{broken"), 0o644))

	c, err := Open(dir, 1<<20)
	require.NoError(t, err)
	require.NoError(t, c.Put("a.zip", writeArchive(t, 10)))
	_, ok := c.Get("a.zip")
	assert.True(t, ok)
}
