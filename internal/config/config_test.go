package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "MXN", cfg.Currency)
	assert.Equal(t, "America/Mexico_City", cfg.Timezone)
	assert.Equal(t, "finanzas.json", cfg.LocalPath)
	assert.Equal(t, "drive", cfg.Remote.Backend)
	assert.False(t, cfg.Remote.CheckVersion)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finanzas.yaml")
	cfg := &Config{
		Currency:  "EUR",
		Timezone:  "Europe/Madrid",
		LocalPath: "/data/finanzas.json",
		Remote: RemoteConfig{
			Backend:      "gcs",
			FileID:       "gs://bucket/finanzas.json",
			CheckVersion: true,
		},
		LastSyncAt: "2024-03-10T12:00:00Z",
	}

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFillsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finanzas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote:\n  file_id: abc123\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "MXN", cfg.Currency)
	assert.Equal(t, "drive", cfg.Remote.Backend)
	assert.Equal(t, "abc123", cfg.Remote.FileID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finanzas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
