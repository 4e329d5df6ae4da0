package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfigFile, EnvRouteBasePath, EnvVersion, EnvPort, EnvMinify, EnvPreload} {
		key := key
		if v, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, v) })
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netbash.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	s := Default()

	if s.Version != "1" {
		t.Errorf("Expected version '1', got %q", s.Version)
	}
	if s.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", s.Server.Port)
	}
	if s.Server.ReadTimeoutDuration() != 15*time.Second {
		t.Errorf("Expected read timeout 15s, got %v", s.Server.ReadTimeoutDuration())
	}
	if s.Server.IdleTimeoutDuration() != 60*time.Second {
		t.Errorf("Expected idle timeout 60s, got %v", s.Server.IdleTimeoutDuration())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	s, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.RouteBasePath != "" {
		t.Errorf("Expected empty base path, got %q", s.RouteBasePath)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
route_base_path = "~/tools/"
version = "7"

[server]
port = "9090"
write_timeout = "30s"

[assets]
minify = true
preload = true
`)
	t.Setenv(EnvConfigFile, path)

	s, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if s.RouteBasePath != "~/tools/" {
		t.Errorf("Expected base path '~/tools/', got %q", s.RouteBasePath)
	}
	if s.Version != "7" {
		t.Errorf("Expected version '7', got %q", s.Version)
	}
	if s.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", s.Server.Port)
	}
	if s.Server.WriteTimeoutDuration() != 30*time.Second {
		t.Errorf("Expected write timeout 30s, got %v", s.Server.WriteTimeoutDuration())
	}
	if s.Server.ReadTimeout != "15s" {
		t.Errorf("Expected default read timeout, got %q", s.Server.ReadTimeout)
	}
	if !s.Assets.Minify || !s.Assets.Preload {
		t.Errorf("Expected minify and preload enabled, got %+v", s.Assets)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
route_base_path = "/tools"
version = "7"
`)
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvRouteBasePath, "")
	t.Setenv(EnvVersion, "8")
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvMinify, "true")
	t.Setenv(EnvPreload, "not-a-bool")

	s, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if s.RouteBasePath != "" {
		t.Errorf("Expected empty base path override, got %q", s.RouteBasePath)
	}
	if s.Version != "8" {
		t.Errorf("Expected version '8', got %q", s.Version)
	}
	if s.Server.Port != "7000" {
		t.Errorf("Expected port 7000, got %q", s.Server.Port)
	}
	if !s.Assets.Minify {
		t.Error("Expected minify enabled from environment")
	}
	if s.Assets.Preload {
		t.Error("Expected invalid preload value to keep default false")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed toml", content: "version = "},
		{name: "bad duration", content: "[server]\nread_timeout = \"soon\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvConfigFile, writeConfig(t, tt.content))

			if _, err := Load(); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}

	t.Run("explicit missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.toml"))

		if _, err := Load(); err == nil {
			t.Error("Expected error for missing explicit config file")
		}
	})
}
