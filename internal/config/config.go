package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mhpenta/lynx"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Environment overrides.
const (
	EnvDataDir       = "LYNX_DATA_DIR"
	EnvBackend       = "LYNX_BACKEND"
	EnvDynamoDBTable = "LYNX_DYNAMODB_TABLE"
)

// Config holds the application configuration
type Config struct {
	DataDir       string                  `yaml:"data_dir"`
	StorageKey    string                  `yaml:"storage_key"`
	Backend       string                  `yaml:"backend"`
	DynamoDBTable string                  `yaml:"dynamodb_table"`
	KeyPolicy     string                  `yaml:"key_policy"`
	BaseURL       string                  `yaml:"base_url,omitempty"`
	Timeout       time.Duration           `yaml:"timeout"`
	Defaults      lynx.GenerationSettings `yaml:"defaults"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:    defaultDataDir(),
		StorageKey: "lynx_history",
		Backend:    BackendFile,
		KeyPolicy:  "strict",
		Timeout:    2 * time.Minute,
		Defaults:   lynx.DefaultSettings(),
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "lynx")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "lynx")
}

func configPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lynx", "config.yaml")
}

// ConfigPath returns the path where the config file should be located
func ConfigPath() string {
	return configPath()
}

// Load reads the configuration from the config file and applies
// environment overrides. Falls back to defaults if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(configPath(), os.LookupEnv)
}

// LoadFrom is Load with an explicit path and environment lookup.
func LoadFrom(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if v, ok := lookupEnv(EnvDataDir); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := lookupEnv(EnvBackend); ok && v != "" {
		cfg.Backend = v
	}
	if v, ok := lookupEnv(EnvDynamoDBTable); ok && v != "" {
		cfg.DynamoDBTable = v
	}

	cfg.DataDir = expandPath(cfg.DataDir)

	// Ensure reasonable defaults
	if cfg.StorageKey == "" {
		cfg.StorageKey = "lynx_history"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Defaults.NumberOfImages <= 0 {
		cfg.Defaults.NumberOfImages = 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent field.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendMemory:
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("backend %q requires dynamodb_table or %s", c.Backend, EnvDynamoDBTable)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.KeyPolicy {
	case "", "strict", "optimistic":
	default:
		return fmt.Errorf("unknown key_policy %q", c.KeyPolicy)
	}

	if err := lynx.ValidateSettings(c.Defaults); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
