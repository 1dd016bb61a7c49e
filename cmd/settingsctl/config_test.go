package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadCLIConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[remote]
url = "http://nas.local:7777"
api_key = "abc"
user = "kid"
tv = true

[serve]
dir = "/srv/novastream"
writes_per_minute = 5
trust_proxy_headers = true

[log]
file = "/tmp/settingsctl.log"
max_backups = 7
`)

	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.Remote.URL != "http://nas.local:7777" || cfg.Remote.APIKey != "abc" || cfg.Remote.User != "kid" || !cfg.Remote.TV {
		t.Fatalf("unexpected remote config %+v", cfg.Remote)
	}
	if cfg.Serve.Dir != "/srv/novastream" || cfg.Serve.WritesPerMinute != 5 || !cfg.Serve.TrustProxyHeaders {
		t.Fatalf("unexpected serve config %+v", cfg.Serve)
	}
	if cfg.Serve.ShutdownTimeoutSec != 10 {
		t.Fatalf("expected default shutdown timeout, got %d", cfg.Serve.ShutdownTimeoutSec)
	}
	if cfg.Log.MaxBackups != 7 || cfg.Log.MaxSizeMB != 10 {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadCLIConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[remote]\nurl = \"http://file:1\"\n")
	t.Setenv("SETTINGSCTL_URL", "http://env:2")
	t.Setenv("SETTINGSCTL_API_KEY", "env-key")
	t.Setenv("SETTINGSCTL_USER", " u2 ")

	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.Remote.URL != "http://env:2" || cfg.Remote.APIKey != "env-key" || cfg.Remote.User != "u2" {
		t.Fatalf("env overrides not applied: %+v", cfg.Remote)
	}
}

func TestLoadCLIConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadCLIConfig("")
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.Remote.URL != defaultCLIConfig().Remote.URL && os.Getenv("SETTINGSCTL_URL") == "" {
		t.Fatalf("expected default url, got %q", cfg.Remote.URL)
	}
}

func TestLoadCLIConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := loadCLIConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "[remote\nurl = 1")
	if _, err := loadCLIConfig(bad); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}

	negative := filepath.Join(dir, "negative.toml")
	writeFile(t, negative, "[serve]\nwrites_per_minute = -1\n")
	if _, err := loadCLIConfig(negative); err == nil {
		t.Fatal("expected validation error")
	}
}
