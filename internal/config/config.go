package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"rhystmorgan/contactbook/internal/storage"
)

type Config struct {
	DataDir    string `yaml:"data_dir" env:"DATA_DIR"`
	Backend    string `yaml:"backend" env:"BACKEND"`
	Slot       string `yaml:"slot" env:"SLOT"`
	PerPage    int    `yaml:"per_page" env:"PER_PAGE"`
	Passphrase string `yaml:"passphrase" env:"PASSPHRASE"`

	Log   LogConfig   `yaml:"log" envPrefix:"LOG_"`
	Audit AuditConfig `yaml:"audit" envPrefix:"AUDIT_"`
	HTTP  HTTPConfig  `yaml:"http" envPrefix:"HTTP_"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	// File is the log destination; "off" disables logging.
	File string `yaml:"file" env:"FILE"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Dir     string `yaml:"dir" env:"DIR"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

const envPrefix = "CONTACTBOOK_"

func DefaultConfig() *Config {
	dataDir, err := storage.DefaultDataDir()
	if err != nil {
		dataDir = ".contactbook"
	}

	return &Config{
		DataDir: dataDir,
		Backend: storage.BackendFile,
		Slot:    storage.DefaultSlot,
		PerPage: 5,
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8888",
		},
	}
}

// Load starts from DefaultConfig, applies the YAML file at path when it
// exists, then CONTACTBOOK_* environment variables.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = filepath.Join(config.DataDir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings and fills in paths derived from DataDir.
func (c *Config) Validate() error {
	switch c.Backend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("invalid backend: %s (must be 'file', 'sqlite' or 'memory')", c.Backend)
	}

	if c.PerPage <= 0 {
		return fmt.Errorf("per_page must be positive, got: %d", c.PerPage)
	}

	if c.Slot == "" {
		return fmt.Errorf("slot name must not be empty")
	}

	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "contactbook.log")
	}
	if c.Audit.Dir == "" {
		c.Audit.Dir = filepath.Join(c.DataDir, "audit")
	}

	return nil
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:    c.Backend,
		DataDir:    c.DataDir,
		Slot:       c.Slot,
		Passphrase: c.Passphrase,
	}
}
