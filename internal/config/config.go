// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chat-ai.
//
// Configuration is read from a TOML file with sensible defaults and
// environment variable overrides:
//
//   - ~/.chat-ai/config.toml
//   - Built-in defaults
//
// Environment overrides: CHAT_AI_SERVER_URL, CHAT_AI_AUTH_TOKEN, CHAT_AI_DEBUG.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/dclavijo45/chat-ai/internal/engine"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	Debug bool `toml:"debug"`

	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Storage StorageConfig `toml:"storage"`
	Engines EngineConfig  `toml:"engines"`
}

// ServerConfig locates the chat backend.
type ServerConfig struct {
	// URL is the websocket endpoint of the chat backend
	URL string `toml:"url"`
	// PingIntervalSecs is the liveness probe interval while connected
	PingIntervalSecs int `toml:"ping_interval_secs"`
}

// AuthConfig carries the externally issued credential.
type AuthConfig struct {
	// Token is attached to outbound requests; empty means unauthenticated
	Token string `toml:"token"`
}

// StorageConfig controls local persistence.
type StorageConfig struct {
	// Dir is the base directory for persisted state (default ~/.chat-ai)
	Dir string `toml:"dir"`
}

// EngineConfig holds engine selection and the image-capability feature flag.
type EngineConfig struct {
	// Default is the engine preselected for new chats
	Default string `toml:"default"`
	// ImageCapable lists the engines that accept image attachments
	ImageCapable []string `toml:"image_capable"`
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:              "ws://localhost:3000/ws",
			PingIntervalSecs: 10,
		},
		Engines: EngineConfig{
			Default:      engine.Default().String(),
			ImageCapable: []string{"openai", "gemini", "anthropic"},
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".chat-ai", "config.toml"), nil
}

// Load reads the config file at path, applies environment overrides, and
// validates the result. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment variable overrides on top of a config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CHAT_AI_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("CHAT_AI_AUTH_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}
	if v := os.Getenv("CHAT_AI_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", c.Server.URL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server url %q must use ws:// or wss://", c.Server.URL)
	}
	if u.Host == "" {
		return errors.New("server url is missing a host")
	}

	if c.Server.PingIntervalSecs <= 0 {
		return errors.New("ping_interval_secs must be positive")
	}

	if _, ok := engine.Parse(c.Engines.Default); !ok {
		return fmt.Errorf("unknown default engine %q", c.Engines.Default)
	}
	for _, name := range c.Engines.ImageCapable {
		if _, ok := engine.Parse(name); !ok {
			return fmt.Errorf("unknown image-capable engine %q", name)
		}
	}

	return nil
}

// DefaultEngine returns the parsed default engine.
func (c *Config) DefaultEngine() engine.Engine {
	if e, ok := engine.Parse(c.Engines.Default); ok {
		return e
	}
	return engine.Default()
}

// ImageCapableEngines returns the parsed image-capability flag.
func (c *Config) ImageCapableEngines() []engine.Engine {
	out := make([]engine.Engine, 0, len(c.Engines.ImageCapable))
	for _, name := range c.Engines.ImageCapable {
		if e, ok := engine.Parse(name); ok {
			out = append(out, e)
		}
	}
	return out
}

// StorageDir returns the configured storage directory, falling back to the
// directory of the config file's default location.
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".chat-ai"), nil
}
