package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := writeConfigFile(t, `
dataDir: /tmp/mystore
shardCount: 32
compactInterval: 2m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/tmp/mystore" {
		t.Fatalf("DataDir = %q, want /tmp/mystore", cfg.DataDir)
	}
	if cfg.ShardCount != 32 {
		t.Fatalf("ShardCount = %d, want 32", cfg.ShardCount)
	}
	if cfg.CompactInterval != 2*time.Minute {
		t.Fatalf("CompactInterval = %v, want 2m", cfg.CompactInterval)
	}
	// fields left out of the file fall back to Default
	def := Default()
	if cfg.CacheCapacity != def.CacheCapacity {
		t.Fatalf("CacheCapacity = %d, want default %d", cfg.CacheCapacity, def.CacheCapacity)
	}
	if cfg.ListenAddr != def.ListenAddr {
		t.Fatalf("ListenAddr = %q, want default %q", cfg.ListenAddr, def.ListenAddr)
	}
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	path := writeConfigFile(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(empty) = %+v, want Default() = %+v", cfg, Default())
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfigFile(t, "compactInterval: not-a-duration\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid compactInterval")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
