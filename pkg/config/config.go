// Package config loads NetBash settings from an optional TOML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by Load
const (
	EnvConfigFile    = "NETBASH_CONFIG"
	EnvRouteBasePath = "NETBASH_ROUTE_BASE_PATH"
	EnvVersion       = "NETBASH_VERSION"
	EnvPort          = "PORT"
	EnvMinify        = "NETBASH_MINIFY"
	EnvPreload       = "NETBASH_PRELOAD"
)

// DefaultConfigFile is read when NETBASH_CONFIG is unset. A missing default
// file is not an error.
const DefaultConfigFile = "netbash.toml"

// Settings is the global NetBash configuration
type Settings struct {
	RouteBasePath string       `toml:"route_base_path"`
	Version       string       `toml:"version"`
	Server        ServerConfig `toml:"server"`
	Assets        AssetsConfig `toml:"assets"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string `toml:"port"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
	IdleTimeout  string `toml:"idle_timeout"`
}

// AssetsConfig holds resource cache settings
type AssetsConfig struct {
	Minify  bool `toml:"minify"`
	Preload bool `toml:"preload"`
}

// Default returns settings with every default applied
func Default() *Settings {
	s := &Settings{}
	s.loadDefaults()
	return s
}

// Load reads the config file, applies environment overrides and validates
// the result.
func Load() (*Settings, error) {
	path := os.Getenv(EnvConfigFile)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	s, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		s, err = &Settings{}, nil
	}
	if err != nil {
		return nil, err
	}

	s.loadDefaults()
	s.loadEnv()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile parses a TOML file without applying defaults or environment overrides
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks that durations parse and required values are present
func (s *Settings) Validate() error {
	if s.Version == "" {
		return errors.New("version is required")
	}
	for name, value := range map[string]string{
		"server.read_timeout":  s.Server.ReadTimeout,
		"server.write_timeout": s.Server.WriteTimeout,
		"server.idle_timeout":  s.Server.IdleTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}
	return nil
}

// ReadTimeoutDuration returns the parsed read timeout
func (c ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// WriteTimeoutDuration returns the parsed write timeout
func (c ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// IdleTimeoutDuration returns the parsed idle timeout
func (c ServerConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

func (s *Settings) loadDefaults() {
	if s.Version == "" {
		s.Version = "1"
	}
	if s.Server.Port == "" {
		s.Server.Port = "8080"
	}
	if s.Server.ReadTimeout == "" {
		s.Server.ReadTimeout = "15s"
	}
	if s.Server.WriteTimeout == "" {
		s.Server.WriteTimeout = "15s"
	}
	if s.Server.IdleTimeout == "" {
		s.Server.IdleTimeout = "60s"
	}
}

func (s *Settings) loadEnv() {
	// An empty base path is meaningful, so presence rather than value decides.
	if v, ok := os.LookupEnv(EnvRouteBasePath); ok {
		s.RouteBasePath = v
	}
	s.Version = getEnv(EnvVersion, s.Version)
	s.Server.Port = getEnv(EnvPort, s.Server.Port)
	s.Assets.Minify = getEnvBool(EnvMinify, s.Assets.Minify)
	s.Assets.Preload = getEnvBool(EnvPreload, s.Assets.Preload)
}

// getEnv gets environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: Invalid value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}
