// Package config loads daemon configuration from a YAML file with
// environment variable overrides (REGMESH_*).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr           string   `koanf:"addr" yaml:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins" yaml:"allowed_origins"`
}

// ProviderConfig selects LLM providers and their models.
type ProviderConfig struct {
	Default        string `koanf:"default" yaml:"default"`
	OpenAIModel    string `koanf:"openai_model" yaml:"openai_model"`
	AnthropicModel string `koanf:"anthropic_model" yaml:"anthropic_model"`
}

// GraphConfig configures the Neo4j connection. An empty URI disables the
// graph: node references degrade to placeholders and concept capture is
// dropped.
type GraphConfig struct {
	URI      string `koanf:"uri" yaml:"uri"`
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`
	Database string `koanf:"database" yaml:"database"`
}

// StoreConfig configures the conversation context store. An empty path
// selects the volatile in-memory store.
type StoreConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `koanf:"level" yaml:"level"`
	Development bool   `koanf:"development" yaml:"development"`
}

// Config is the root daemon configuration.
type Config struct {
	Server     ServerConfig   `koanf:"server" yaml:"server"`
	Provider   ProviderConfig `koanf:"provider" yaml:"provider"`
	Graph      GraphConfig    `koanf:"graph" yaml:"graph"`
	Store      StoreConfig    `koanf:"store" yaml:"store"`
	Logging    LoggingConfig  `koanf:"logging" yaml:"logging"`
	BasePrompt string         `koanf:"base_prompt" yaml:"base_prompt"`
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Provider: ProviderConfig{
			Default: "openai",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. Double underscores nest:
// REGMESH_SERVER__ADDR -> server.addr.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("REGMESH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "REGMESH_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
