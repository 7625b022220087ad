package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanzas-dev/finanzas/internal/document"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finanzas.json")
	store := NewFileStore(path)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := document.SkeletonAt(document.Defaults{Currency: "MXN"}, now, "dev-1")
	doc.GetOrCreateDay("2024-03-01", now)

	require.NoError(t, store.Write(doc))

	got, ok, err := store.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "MXN", got.Meta.Currency)
	assert.Equal(t, "dev-1", got.Meta.DeviceID)
	require.Len(t, got.Ledger.Days, 1)
	assert.Equal(t, "2024-03-01", got.Ledger.Days[0].Date)
}

func TestFileStoreReadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	doc, ok, err := store.Read()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, doc)
}

func TestFileStoreReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finanzas.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ledger":{"days":"nope"}}`), 0o644))

	_, _, err := NewFileStore(path).Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrMalformed)
}

func TestFileStoreWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "finanzas.json"))
	doc := document.SkeletonAt(document.Defaults{}, time.Now(), "d")

	require.NoError(t, store.Write(doc))
	require.NoError(t, store.Write(doc))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "finanzas.json", entries[0].Name())
}
