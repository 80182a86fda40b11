// Package config loads the cart engine's YAML configuration: which
// durable backend holds the snapshot slot, and how notifications format
// prices.
package config

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in storage.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// ValidBackends lists the accepted storage backends.
var ValidBackends = []string{BackendFile, BackendSQLite, BackendRedis}

// Config is the full engine configuration.
type Config struct {
	Storage       Storage       `yaml:"storage"`
	Notifications Notifications `yaml:"notifications"`
}

// Storage selects and parameterizes the snapshot slot.
type Storage struct {
	// Backend is one of ValidBackends.
	Backend string `yaml:"backend"`
	// Path is the snapshot file (file backend) or database file
	// (sqlite backend).
	Path string `yaml:"path"`
	// Slot is the sqlite slot name. Empty uses the adapter default.
	Slot string `yaml:"slot,omitempty"`
	// Redis parameterizes the redis backend.
	Redis Redis `yaml:"redis,omitempty"`
}

// Redis holds redis backend settings.
type Redis struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db,omitempty"`
	Key  string `yaml:"key,omitempty"`
}

// Notifications holds locale settings for notification text.
type Notifications struct {
	// Locale is a BCP 47 tag, e.g. "en-US".
	Locale string `yaml:"locale"`
	// Currency is an ISO 4217 code, e.g. "USD".
	Currency string `yaml:"currency"`
}

// Default returns the configuration used when no file is given: a file
// snapshot next to the working directory, en-US notifications in USD.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend: BackendFile,
			Path:    "cart.json",
		},
		Notifications: Notifications{
			Locale:   "en-US",
			Currency: "USD",
		},
	}
}

// Load reads and validates a YAML configuration file. Fields not set in
// the file keep their Default values. Unknown fields are rejected to
// catch typos.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks backend selection and locale settings.
func (c Config) Validate() error {
	if !slices.Contains(ValidBackends, c.Storage.Backend) {
		return fmt.Errorf("storage.backend %q: must be one of %v", c.Storage.Backend, ValidBackends)
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis backend")
		}
	}

	if _, err := language.Parse(c.Notifications.Locale); err != nil {
		return fmt.Errorf("notifications.locale %q: %w", c.Notifications.Locale, err)
	}
	if _, err := currency.ParseISO(c.Notifications.Currency); err != nil {
		return fmt.Errorf("notifications.currency %q: %w", c.Notifications.Currency, err)
	}
	return nil
}

// LanguageTag parses the configured locale. Validate must have passed.
func (c Config) LanguageTag() language.Tag {
	return language.MustParse(c.Notifications.Locale)
}

// CurrencyUnit parses the configured currency. Validate must have passed.
func (c Config) CurrencyUnit() currency.Unit {
	return currency.MustParseISO(c.Notifications.Currency)
}
