package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Sections)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.JSONLogs)
	assert.NotEmpty(t, cfg.CachePath)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().CachePath, cfg.CachePath)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	data := []byte("sections:\n  - callMap\n  - lva\nverbose: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"callMap", "lva"}, cfg.Sections)
	assert.True(t, cfg.Verbose)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("sections: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FFLOW_SECTIONS", "rd, duMap")
	t.Setenv("FFLOW_VERBOSE", "true")
	t.Setenv("FFLOW_CACHE_PATH", "/tmp/alt.msgpack")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"rd", "duMap"}, cfg.Sections)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/tmp/alt.msgpack", cfg.CachePath)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Sections = []string{"callMap"}
	cfg.Verbose = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Sections, loaded.Sections)
	assert.True(t, loaded.Verbose)
}
