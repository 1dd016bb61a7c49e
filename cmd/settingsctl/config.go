package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// cliConfig is the settingsctl configuration file.
type cliConfig struct {
	Remote remoteConfig `toml:"remote"`
	Serve  serveConfig  `toml:"serve"`
	Backup backupConfig `toml:"backup"`
	Log    logConfig    `toml:"log"`
}

type backupConfig struct {
	Keep            int  `toml:"keep"`
	SnapshotOnServe bool `toml:"snapshot_on_serve"`
}

type remoteConfig struct {
	URL      string `toml:"url"`
	APIKey   string `toml:"api_key"`
	User     string `toml:"user"`
	LocalDir string `toml:"local_dir"`
	TV       bool   `toml:"tv"`
}

type serveConfig struct {
	Dir                string `toml:"dir"`
	Addr               string `toml:"addr"`
	APIKey             string `toml:"api_key"`
	WritesPerMinute    int    `toml:"writes_per_minute"`
	ShutdownTimeoutSec int    `toml:"shutdown_timeout_sec"`
	// Rate limit by X-Forwarded-For / X-Real-IP. Only behind a proxy.
	TrustProxyHeaders  bool   `toml:"trust_proxy_headers"`
}

type logConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		Remote: remoteConfig{URL: "http://localhost:7777"},
		Serve: serveConfig{
			Dir:                "cache",
			WritesPerMinute:    30,
			ShutdownTimeoutSec: 10,
		},
		Backup: backupConfig{Keep: 10, SnapshotOnServe: true},
		Log: logConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// loadCLIConfig reads the TOML file at path (or the default location when
// path is empty) and applies SETTINGSCTL_* environment overrides. A missing
// file yields the defaults.
func loadCLIConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()

	resolved, explicit, err := resolveConfigPath(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("config file %s not found", resolved)
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, cfg.validate()
}

func resolveConfigPath(path string) (string, bool, error) {
	if path = strings.TrimSpace(path); path != "" {
		return path, true, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "settingsctl", "config.toml"), false, nil
}

func applyEnv(cfg *cliConfig) {
	if v, ok := os.LookupEnv("SETTINGSCTL_URL"); ok {
		cfg.Remote.URL = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("SETTINGSCTL_API_KEY"); ok {
		cfg.Remote.APIKey = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("SETTINGSCTL_USER"); ok {
		cfg.Remote.User = strings.TrimSpace(v)
	}
}

func (c cliConfig) validate() error {
	if c.Serve.WritesPerMinute < 0 {
		return fmt.Errorf("serve.writes_per_minute must be at least 0, got %d", c.Serve.WritesPerMinute)
	}
	if c.Serve.ShutdownTimeoutSec < 0 {
		return fmt.Errorf("serve.shutdown_timeout_sec must be at least 0, got %d", c.Serve.ShutdownTimeoutSec)
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep must be at least 0, got %d", c.Backup.Keep)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation values must not be negative")
	}
	return nil
}
