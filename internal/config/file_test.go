package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Missing file should not fail: %v", err)
	}
	if cfg.GetMaxParallel() != DefaultMaxParallel {
		t.Errorf("Expected default max parallel, got %d", cfg.GetMaxParallel())
	}
	if cfg.TimeoutDuration() != 15*time.Second {
		t.Errorf("Expected default timeout, got %v", cfg.TimeoutDuration())
	}
}

func TestLoadFile_Values(t *testing.T) {
	path := writeConfig(t, `
cookie: "SESSDATA=abc"
download_dir: /music/bili
max_parallel: 42
salt_mode: mixin
timeout: 30s
state_file: /tmp/state.json
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	t.Setenv(EnvCookie, "")
	if cfg.ResolvedCookie() != "SESSDATA=abc" {
		t.Errorf("Unexpected cookie %q", cfg.ResolvedCookie())
	}
	if cfg.GetDownloadDir() != "/music/bili" {
		t.Errorf("Unexpected dir %q", cfg.GetDownloadDir())
	}
	if cfg.GetMaxParallel() != 10 {
		t.Errorf("Max parallel should clamp to 10, got %d", cfg.GetMaxParallel())
	}
	if cfg.SaltMode != SaltMixin {
		t.Errorf("Unexpected salt mode %q", cfg.SaltMode)
	}
	if cfg.TimeoutDuration() != 30*time.Second {
		t.Errorf("Unexpected timeout %v", cfg.TimeoutDuration())
	}
	if cfg.GetStateFile() != "/tmp/state.json" {
		t.Errorf("Unexpected state file %q", cfg.GetStateFile())
	}
}

func TestLoadFile_EnvCookieWins(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "cookie: from-file\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	t.Setenv(EnvCookie, "from-env")
	if cfg.ResolvedCookie() != "from-env" {
		t.Errorf("Env cookie should win, got %q", cfg.ResolvedCookie())
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	bodies := []string{
		"salt_mode: rot13\n",
		"timeout: soon\n",
		"cookie: [unclosed\n",
	}
	for _, body := range bodies {
		if _, err := LoadFile(writeConfig(t, body)); err == nil {
			t.Errorf("Expected error for %q", body)
		}
	}
}
