// Package config loads application configuration from environment variables.
package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL     string
	ListenAddr     string
	DBPath         string
	SecretKey      []byte // 32-byte AES key derived from CLOSETPANEL_SECRET_KEY; nil when unset.
	SyncInterval   time.Duration
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

// HasSecretKey returns true when a credential encryption key was configured.
// Without it the panel runs anonymously: sessions cannot be persisted.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a
// validated Config. All variables are optional and default to a local
// single-user setup: CLOSETPANEL_API_BASE_URL (http://localhost:8080/api),
// CLOSETPANEL_LISTEN_ADDR (127.0.0.1:8090), CLOSETPANEL_DB_PATH
// (closetpanel.db), CLOSETPANEL_SECRET_KEY (unset), CLOSETPANEL_SYNC_INTERVAL
// (5m), CLOSETPANEL_REQUEST_TIMEOUT (10s), CLOSETPANEL_UPLOAD_TIMEOUT (30s).
func Load() (*Config, error) {
	apiBaseURL := "http://localhost:8080/api"
	if v, ok := os.LookupEnv("CLOSETPANEL_API_BASE_URL"); ok && v != "" {
		apiBaseURL = v
	}

	listenAddr := "127.0.0.1:8090"
	if v, ok := os.LookupEnv("CLOSETPANEL_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "closetpanel.db"
	if v, ok := os.LookupEnv("CLOSETPANEL_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("CLOSETPANEL_SECRET_KEY"); ok && v != "" {
		// Derive a fixed-length AES-256 key from the passphrase.
		sum := sha256.Sum256([]byte(v))
		secretKey = sum[:]
	}

	syncInterval, err := durationEnv("CLOSETPANEL_SYNC_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	requestTimeout, err := durationEnv("CLOSETPANEL_REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	uploadTimeout, err := durationEnv("CLOSETPANEL_UPLOAD_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		APIBaseURL:     apiBaseURL,
		ListenAddr:     listenAddr,
		DBPath:         dbPath,
		SecretKey:      secretKey,
		SyncInterval:   syncInterval,
		RequestTimeout: requestTimeout,
		UploadTimeout:  uploadTimeout,
	}, nil
}

// durationEnv parses a duration environment variable with a default.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}
