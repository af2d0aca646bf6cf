// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for warview.
//
// Configuration is loaded from a single YAML file specified by:
//   - WARVIEW_CONFIG environment variable, or
//   - --config flag passed to the command
//
// Both are optional: every field has a default suitable for a game
// server running on localhost, and any field can also be overridden
// with a command-line flag.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the warview dashboard configuration.
type Config struct {
	// Server configures the game server's REST API.
	Server ServerConfig `yaml:"server"`

	// Feed configures the event stream connection.
	Feed FeedConfig `yaml:"feed"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// ServerConfig configures the REST API client.
type ServerConfig struct {
	// URL is the base URL of the REST API.
	// Default: http://localhost:8000
	URL string `yaml:"url"`
}

// FeedConfig configures the event stream.
type FeedConfig struct {
	// URL is the WebSocket endpoint. When empty it is derived from the
	// server URL by swapping the scheme to ws/wss and appending /ws.
	URL string `yaml:"url"`
}

// LogConfig configures structured logging. The dashboard owns the
// terminal, so logs go to a file rather than stderr.
type LogConfig struct {
	// Output is the log file path. Empty disables logging.
	Output string `yaml:"output"`

	// Level is the minimum level: debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{URL: "http://localhost:8000"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load loads configuration from the WARVIEW_CONFIG environment
// variable, falling back to defaults when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv("WARVIEW_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging it
// over the defaults.
func LoadFile(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return config, nil
}

// FeedURL returns the event stream endpoint, deriving it from the
// server URL when no explicit feed URL is configured.
func (config *Config) FeedURL() (string, error) {
	if config.Feed.URL != "" {
		return config.Feed.URL, nil
	}

	serverURL, err := url.Parse(config.Server.URL)
	if err != nil {
		return "", fmt.Errorf("config: invalid server URL %q: %w", config.Server.URL, err)
	}
	switch serverURL.Scheme {
	case "http":
		serverURL.Scheme = "ws"
	case "https":
		serverURL.Scheme = "wss"
	default:
		return "", fmt.Errorf("config: cannot derive feed URL from server scheme %q", serverURL.Scheme)
	}
	serverURL.Path = strings.TrimRight(serverURL.Path, "/") + "/ws"
	return serverURL.String(), nil
}
