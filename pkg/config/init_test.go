package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	expected := filepath.Join(tmpDir, ".config", "dittodav", "config.yaml")
	if configPath != expected {
		t.Errorf("Expected config at %q, got %q", expected, configPath)
	}
	if !ConfigExists() {
		t.Error("ConfigExists should be true after init")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read generated config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# DittoDAV Configuration File") {
		t.Error("Generated config is missing its header")
	}
	for _, key := range []string{"logging:", "repository:", "backends:", "root_url: /dav/workspaces", "metrics:"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Generated config missing %q", key)
		}
	}

	if _, err := InitConfig(false); err == nil {
		t.Error("Expected error when the config already exists")
	}
	if _, err := InitConfig(true); err != nil {
		t.Errorf("Forced InitConfig failed: %v", err)
	}
}

func TestInitConfigToPath_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	if err := InitConfigToPath(configPath, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}

	def := GetDefaultConfig()
	if cfg.Backends[0].RootPath != def.Backends[0].RootPath || cfg.Repository.Type != def.Repository.Type {
		t.Errorf("Loaded config differs from defaults: %+v", cfg)
	}
	if len(cfg.Backends[0].RootTypes) != 2 {
		t.Errorf("Expected root types to survive the round trip, got %v", cfg.Backends[0].RootTypes)
	}
}
