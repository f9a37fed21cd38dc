// Package bot assembles the Evernote bot application on top of the
// shared core: configuration, service wiring, command handlers, and
// message dispatch.
package bot

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"evernotebot/cache"
	coreconfig "evernotebot/core/config"
	coredatabase "evernotebot/core/database"
	"evernotebot/evernote"
)

// CacheConfig controls the notebook list cache.
type CacheConfig struct {
	Size int `yaml:"size" envconfig:"CACHE_SIZE"`
}

// Config aggregates core configuration with the bot's own sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Evernote evernote.Config     `yaml:"evernote"`
	Cache    CacheConfig         `yaml:"cache"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the application configuration from a YAML file and
// the environment, then validates it.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Database.Host) == "" {
		return fmt.Errorf("database.host is required")
	}
	if strings.TrimSpace(cfg.Database.Name) == "" {
		return fmt.Errorf("database.name is required")
	}
	if strings.TrimSpace(cfg.Evernote.BaseURL) == "" {
		return fmt.Errorf("evernote.base_url is required")
	}
	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = cache.DefaultSize
	}
	return nil
}
