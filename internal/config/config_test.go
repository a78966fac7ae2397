package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "@daily", cfg.CheckInterval)
	assert.Equal(t, 7, cfg.NotificationFrequencyDays)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 5, cfg.GotifyPriority)
	assert.Equal(t, "tagwatch", cfg.GotifyTitle)
	assert.False(t, cfg.NotifierConfigured())
	assert.True(t, cfg.HistoryEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHECK_INTERVAL", "0 8 * * *")
	t.Setenv("NOTIFICATION_FREQUENCY", "3")
	t.Setenv("DATA_DIR", "/var/lib/tagwatch")
	t.Setenv("GOTIFY_URL", "https://gotify.example.net")
	t.Setenv("GOTIFY_TOKEN", "tok")
	t.Setenv("GOTIFY_PRIORITY", "8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0 8 * * *", cfg.CheckInterval)
	assert.Equal(t, 3, cfg.NotificationFrequencyDays)
	assert.Equal(t, "/var/lib/tagwatch", cfg.DataDir)
	assert.Equal(t, 8, cfg.GotifyPriority)
	assert.True(t, cfg.NotifierConfigured())
}

func TestLoadYAMLFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
check_interval: "@hourly"
notification_frequency_days: 14
gotify_url: https://yaml.example.net
gotify_token: yaml-token
`), 0o644))

	t.Setenv("CHECK_INTERVAL", "@weekly")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Env beats YAML, YAML beats defaults
	assert.Equal(t, "@weekly", cfg.CheckInterval)
	assert.Equal(t, 14, cfg.NotificationFrequencyDays)
	assert.Equal(t, "https://yaml.example.net", cfg.GotifyURL)
}

func TestLoadMissingYAMLFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "@daily", cfg.CheckInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("non-integer frequency", func(t *testing.T) {
		t.Setenv("NOTIFICATION_FREQUENCY", "weekly")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOTIFICATION_FREQUENCY")
	})

	t.Run("negative frequency", func(t *testing.T) {
		t.Setenv("NOTIFICATION_FREQUENCY", "-1")
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestHistoryDisabled(t *testing.T) {
	t.Setenv("DB_PATH", "disabled")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.HistoryEnabled())
}
