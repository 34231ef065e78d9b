package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "inkbound.db", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, uint(1600), cfg.Upload.MaxDimension)
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
api:
  base_url: "http://studio.local:5000"
storage:
  path: "/tmp/ink.db"
log:
  level: "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://studio.local:5000", cfg.API.BaseURL)
	assert.Equal(t, "/tmp/ink.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("INKBOUND_API_URL", "http://override:5000")
	t.Setenv("INKBOUND_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://override:5000", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestResolveBaseURLPriority(t *testing.T) {
	// Explicit override wins over everything
	assert.Equal(t, "http://manual:9999",
		ResolveBaseURL("http://manual:9999/", "studio.local", "10.0.0.5"))

	// Current host beats the stored one when it routes somewhere real
	assert.Equal(t, "http://studio.local:5000",
		ResolveBaseURL("", "studio.local", "10.0.0.5"))

	// Loopback hosts carry no routing information
	assert.Equal(t, "http://10.0.0.5:5000",
		ResolveBaseURL("", "localhost", "10.0.0.5"))
	assert.Equal(t, "http://10.0.0.5:5000",
		ResolveBaseURL("", "127.0.0.1", "10.0.0.5"))

	// Hardcoded fallback when nothing else is known
	assert.Equal(t, "http://192.168.1.19:5000", ResolveBaseURL("", "", ""))
}

func TestDetectedHost(t *testing.T) {
	assert.Equal(t, "studio.local", DetectedHost("studio.local"))
	assert.Empty(t, DetectedHost("localhost"))
	assert.Empty(t, DetectedHost("127.0.0.1"))
	assert.Empty(t, DetectedHost(""))
}
