package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadowStrikeHQ/vao-vulnexposedsecrets/internal/types"
)

func record(id string) types.RunRecord {
	return types.RunRecord{
		ID:        id,
		Target:    "https://example.com/repo.git",
		Kind:      "remote-url",
		State:     types.RunSucceeded,
		StartedAt: time.Now().UTC(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	s := New(path)
	s.Append(record("run-1"))
	s.Append(record("run-2"))
	require.NoError(t, s.Save())

	s2 := New(path)
	require.NoError(t, s2.Load())

	r1, ok := s2.Get("run-1")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/repo.git", r1.Target)

	_, ok = s2.Get("run-3")
	assert.False(t, ok)
	assert.Len(t, s2.All(), 2)
}

func TestStoreLoadNonexistent(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "history.json"))
	assert.NoError(t, s.Load())
	assert.Empty(t, s.Records)
}

func TestStoreLoadCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{{"), 0o600))

	s := New(path)
	err := s.Load()
	assert.Error(t, err, "corruption is surfaced for logging")
	assert.Empty(t, s.Records, "but the store starts empty rather than crashing")
}

func TestStoreUpdateReplacesByID(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "history.json"))
	s.Append(record("run-1"))

	updated := record("run-1")
	updated.State = types.RunFailed
	updated.Error = "clone failed"
	s.Update(updated)

	got, ok := s.Get("run-1")
	require.True(t, ok)
	assert.Equal(t, types.RunFailed, got.State)
	assert.Len(t, s.All(), 1)
}

func TestStoreUpdateAppendsUnknownID(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "history.json"))
	s.Update(record("run-9"))
	assert.Len(t, s.All(), 1)
}

func TestStoreCapsRecords(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "history.json"))
	for i := 0; i < maxRecords+25; i++ {
		s.Append(record(fmt.Sprintf("run-%d", i)))
	}

	all := s.All()
	assert.Len(t, all, maxRecords)
	assert.Equal(t, fmt.Sprintf("run-%d", 25), all[0].ID, "oldest entries are evicted")
}

func TestStoreCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "deep", "history.json")

	s := New(path)
	s.Append(record("run-1"))
	require.NoError(t, s.Save())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestStoreRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.json")
	require.NoError(t, os.WriteFile(real, []byte("{}"), 0o600))
	link := filepath.Join(dir, "history.json")
	require.NoError(t, os.Symlink(real, link))

	s := New(link)
	assert.Error(t, s.Load())
	assert.Error(t, s.Save())
}

func TestDefaultPath(t *testing.T) {
	assert.Contains(t, DefaultPath(), "history.json")
}
