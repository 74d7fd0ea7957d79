package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
// AutoUpdate is a pointer so that an absent key keeps the default (on)
// while an explicit false turns it off.
type Config struct {
	Addr            string   `json:"addr" yaml:"addr" toml:"addr"`
	BaseURL         string   `json:"base_url" yaml:"base_url" toml:"base_url"`
	DefaultModel    string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	ProfilesDir     string   `json:"profiles_dir" yaml:"profiles_dir" toml:"profiles_dir"`
	APIKey          string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	APIKeyFile      string   `json:"api_key_file" yaml:"api_key_file" toml:"api_key_file"`
	TimeoutSeconds  int      `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	CacheTTLSeconds int      `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds"`
	Temperature     float64  `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopN            int      `json:"top_n" yaml:"top_n" toml:"top_n"`
	AutoUpdate      *bool    `json:"auto_update" yaml:"auto_update" toml:"auto_update"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
