package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"seahorse/internal/domain"
	"seahorse/internal/registry"
)

// ConfigFile is the name of the config file inside the home directory.
const ConfigFile = "config.yaml"

// Config holds runtime wiring options for building the app. Fields tagged
// yaml are persisted; the rest come from flags or tests.
type Config struct {
	Home        string           `yaml:"-"`                    // config directory, e.g. $HOME/.seahorse
	Account     domain.AccountID `yaml:"account"`              // who we are
	RegistryURL string           `yaml:"registry_url"`         // e.g. http://127.0.0.1:8080
	Timeout     time.Duration    `yaml:"timeout"`              // per registry call
	LogLevel    string           `yaml:"log_level,omitempty"`  // logrus level name
	LogFormat   string           `yaml:"log_format,omitempty"` // text or json

	Passphrase string          `yaml:"-"` // seals the identity on disk; empty gives each process a fresh keypair, so friend confirm cannot work
	HTTP       *http.Client    `yaml:"-"` // optional; defaults to http.DefaultClient
	Registry   domain.Registry `yaml:"-"` // optional; overrides RegistryURL
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig(home string) Config {
	return Config{
		Home:        home,
		RegistryURL: "http://127.0.0.1:8080",
		Timeout:     registry.DefaultTimeout,
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// LoadConfig reads <home>/config.yaml over the defaults. A missing file is
// not an error.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)
	b, err := os.ReadFile(filepath.Join(home, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	cfg.Home = home
	return cfg, nil
}

// Save writes the persisted fields to <home>/config.yaml.
func (c Config) Save() error {
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Home, ConfigFile), b, 0o600)
}

// Validate reports settings that make wiring impossible.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("home directory is required")
	}
	if c.Account == "" {
		return domain.ErrNoAccount
	}
	if c.Registry == nil && c.RegistryURL == "" {
		return errors.New("registry URL is required")
	}
	return nil
}
