package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "divi-import.yaml"

// Config represents the top-level divi-import.yaml configuration.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Import    ImportConfig    `yaml:"import"`
}

// WorkspaceConfig identifies the tenant everything is scoped to.
type WorkspaceConfig struct {
	ID       string `yaml:"id"`
	UserID   string `yaml:"user_id"`
	Database string `yaml:"database"`
}

// ImportConfig controls the import pipeline.
type ImportConfig struct {
	Delimiter   string `yaml:"delimiter"`
	StagingPath string `yaml:"staging_path"`
}

// Load reads a divi-import.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Import.Delimiter == "" {
		cfg.Import.Delimiter = ","
	}
	if cfg.Import.StagingPath == "" {
		cfg.Import.StagingPath = ".divi/staged-import.json"
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(workspaceID, userID string) *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			ID:       workspaceID,
			UserID:   userID,
			Database: "divi.db",
		},
		Import: ImportConfig{
			Delimiter:   ",",
			StagingPath: ".divi/staged-import.json",
		},
	}
}

// DelimiterRune returns the configured delimiter as a rune, defaulting to a
// comma when unset or longer than one character.
func (c *Config) DelimiterRune() rune {
	r := []rune(c.Import.Delimiter)
	if len(r) != 1 {
		return ','
	}
	return r[0]
}
