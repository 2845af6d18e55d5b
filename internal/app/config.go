package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/noterbot/core/config"
	coredatabase "github.com/m3rciful/noterbot/core/database"
)

// Config is the full application configuration: the reusable core sections
// plus the database block.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads the YAML file, applies environment overrides and validates.
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
	if err := normalizeDatabase(&cfg.Database); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeDatabase(db *coredatabase.Config) error {
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if db.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	return nil
}
