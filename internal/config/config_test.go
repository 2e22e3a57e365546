package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, FormatText, cfg.Format)
	assert.True(t, cfg.CacheEnabled)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Empty(t, cfg.Detectors)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid format")

	cfg = DefaultConfig()
	cfg.Detectors = []string{"no-such-detector"}
	assert.ErrorContains(t, cfg.Validate(), "unknown detector")

	cfg = DefaultConfig()
	cfg.Exclude = []string{"no-such-detector"}
	assert.ErrorContains(t, cfg.Validate(), "unknown detector in exclude list")

	cfg = DefaultConfig()
	cfg.CacheEnabled = true
	cfg.CacheDir = ""
	assert.ErrorContains(t, cfg.Validate(), "cache_dir")

	cfg = DefaultConfig()
	cfg.Detectors = []string{"missing-fee-check"}
	assert.NoError(t, cfg.Validate())
}

func TestSelectedDetectors(t *testing.T) {
	cfg := DefaultConfig()
	all := cfg.SelectedDetectors()
	assert.NotEmpty(t, all)

	cfg.Detectors = []string{"missing-fee-check", "can-close-account"}
	selected := cfg.SelectedDetectors()
	require.Len(t, selected, 2)

	cfg.Exclude = []string{"can-close-account"}
	selected = cfg.SelectedDetectors()
	require.Len(t, selected, 1)
	assert.Equal(t, "missing-fee-check", selected[0].Name())

	cfg.Detectors = nil
	cfg.Exclude = []string{"missing-fee-check"}
	for _, d := range cfg.SelectedDetectors() {
		assert.NotEqual(t, "missing-fee-check", d.Name())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TEALSCAN_DETECTORS", "missing-fee-check, can-close-asset")
	t.Setenv("TEALSCAN_FORMAT", "json")
	t.Setenv("TEALSCAN_VERSION", "5")
	t.Setenv("TEALSCAN_CACHE_ENABLED", "false")
	t.Setenv("TEALSCAN_VERBOSE", "1")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, []string{"missing-fee-check", "can-close-asset"}, cfg.Detectors)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 5, cfg.Version)
	assert.False(t, cfg.CacheEnabled)
	assert.True(t, cfg.Verbose)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Detectors = []string{"missing-fee-check"}
	cfg.Format = FormatJSON
	cfg.CacheEnabled = false
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Detectors, loaded.Detectors)
	assert.Equal(t, FormatJSON, loaded.Format)
	assert.False(t, loaded.CacheEnabled)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detectors: [unclosed"), 0644))
	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}
