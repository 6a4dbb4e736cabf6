package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfigEnv clears every CLOSETPANEL_* variable for the test, relying
// on t.Setenv's automatic restore.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLOSETPANEL_API_BASE_URL",
		"CLOSETPANEL_LISTEN_ADDR",
		"CLOSETPANEL_DB_PATH",
		"CLOSETPANEL_SECRET_KEY",
		"CLOSETPANEL_SYNC_INTERVAL",
		"CLOSETPANEL_REQUEST_TIMEOUT",
		"CLOSETPANEL_UPLOAD_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, "127.0.0.1:8090", cfg.ListenAddr)
	assert.Equal(t, "closetpanel.db", cfg.DBPath)
	assert.False(t, cfg.HasSecretKey())
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.UploadTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CLOSETPANEL_API_BASE_URL", "https://api.example.com/v2")
	t.Setenv("CLOSETPANEL_LISTEN_ADDR", "0.0.0.0:9000")
	t.Setenv("CLOSETPANEL_DB_PATH", "/var/lib/closetpanel/panel.db")
	t.Setenv("CLOSETPANEL_SYNC_INTERVAL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v2", cfg.APIBaseURL)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/closetpanel/panel.db", cfg.DBPath)
	assert.Equal(t, 90*time.Second, cfg.SyncInterval)
}

func TestLoad_SecretKeyDerivation(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CLOSETPANEL_SECRET_KEY", "correct horse battery staple")

	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.HasSecretKey())
	assert.Len(t, cfg.SecretKey, 32, "key must fit AES-256")

	// The same passphrase derives the same key across restarts.
	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.SecretKey, again.SecretKey)
}

func TestLoad_InvalidDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CLOSETPANEL_REQUEST_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLOSETPANEL_REQUEST_TIMEOUT")
}
