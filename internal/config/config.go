// Package config loads server configuration from FORGE_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string // FORGE_DATABASE_URL (required)
	HTTPAddr    string // FORGE_HTTP_ADDR (default ":8080")
	NATSURL     string // FORGE_NATS_URL (optional, empty = no events)
	AuthToken   string // FORGE_AUTH_TOKEN (optional, empty = auth disabled)

	// Scan worker settings
	ScanRoots    []string      // FORGE_SCAN_ROOTS (comma-separated allowlist; empty = any root)
	ScanWorkers  int           // FORGE_SCAN_WORKERS (default 1)
	PollInterval time.Duration // FORGE_POLL_INTERVAL (default 2s)

	// Sync settings
	SyncInterval   time.Duration // FORGE_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // FORGE_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // FORGE_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // FORGE_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // FORGE_SYNC_S3_KEY (default "forge/backup.jsonl")
	SyncGitRepo    string        // FORGE_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // FORGE_SYNC_GIT_FILE (default "forge.jsonl")
	SyncGitBranch  string        // FORGE_SYNC_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("FORGE_DATABASE_URL"),
		HTTPAddr:       envOrDefault("FORGE_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("FORGE_NATS_URL"),
		AuthToken:      os.Getenv("FORGE_AUTH_TOKEN"),
		SyncS3Bucket:   os.Getenv("FORGE_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("FORGE_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("FORGE_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("FORGE_SYNC_S3_KEY", "forge/backup.jsonl"),
		SyncGitRepo:    os.Getenv("FORGE_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("FORGE_SYNC_GIT_FILE", "forge.jsonl"),
		SyncGitBranch:  envOrDefault("FORGE_SYNC_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("FORGE_DATABASE_URL is required")
	}

	if roots := os.Getenv("FORGE_SCAN_ROOTS"); roots != "" {
		for _, r := range strings.Split(roots, ",") {
			if r = strings.TrimSpace(r); r != "" {
				c.ScanRoots = append(c.ScanRoots, r)
			}
		}
	}

	poll, err := envDuration("FORGE_POLL_INTERVAL", "2s")
	if err != nil {
		return nil, err
	}
	c.PollInterval = poll

	c.ScanWorkers = 1
	if v := os.Getenv("FORGE_SCAN_WORKERS"); v != "" {
		n := 0
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n < 1 {
			return nil, fmt.Errorf("FORGE_SCAN_WORKERS: invalid value %q", v)
		}
		c.ScanWorkers = n
	}

	interval, err := envDuration("FORGE_SYNC_INTERVAL", "3m")
	if err != nil {
		return nil, err
	}
	c.SyncInterval = interval

	return c, nil
}

func envDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
