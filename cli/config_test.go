package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	cfg, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.DefaultServer)

	server, err := cfg.GetServer("")
	require.NoError(t, err)
	assert.Equal(t, defaultServerURL, server.URL)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	cfg, err := loadConfigFrom(path)
	require.NoError(t, err)
	require.NoError(t, cfg.AddServer("staging", "https://staging.example.com", "Staging API"))
	require.NoError(t, cfg.SetDefault("staging"))

	reloaded, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", reloaded.DefaultServer)
	assert.Equal(t, []string{"local", "staging"}, reloaded.ServerNames())
	assert.Equal(t, "Staging API", reloaded.Servers["staging"].Description)
}

func TestRemoveDefaultServerPicksNext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")

	cfg, err := loadConfigFrom(path)
	require.NoError(t, err)
	require.NoError(t, cfg.AddServer("prod", "https://api.example.com", ""))
	require.NoError(t, cfg.RemoveServer("local"))

	assert.Equal(t, "prod", cfg.DefaultServer)
	assert.Error(t, cfg.RemoveServer("local"))
}

func TestConfigValidation(t *testing.T) {
	cfg, err := loadConfigFrom(filepath.Join(t.TempDir(), "cli.yaml"))
	require.NoError(t, err)

	assert.Error(t, cfg.AddServer("", "http://x", ""))
	assert.Error(t, cfg.AddServer("x", "", ""))
	assert.Error(t, cfg.SetDefault("missing"))

	_, err = cfg.GetServer("missing")
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	require.NoError(t, os.WriteFile(path, []byte("servers: [unclosed"), 0600))

	_, err := loadConfigFrom(path)
	assert.Error(t, err)
}
