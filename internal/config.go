package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level   `yaml:"log_level"`
	HTTP     HTTPConfig   `yaml:"http"`
	Events   EventsConfig `yaml:"events"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// EventsConfig tunes the SSE stream.
type EventsConfig struct {
	// VaultThrottle bounds how often vault.updated is sent.
	VaultThrottle time.Duration `yaml:"vault_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.VaultThrottle, validation.Min(time.Duration(0))),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig describes the Markdown vault headsync watches.
//
// SettingsFile holds the inclusion settings; a relative path is resolved
// against the vault. ExcludedFolders is the vault's own exclusion rule list
// (folder prefixes or path.Match globs).
type VaultConfig struct {
	Path            string   `yaml:"path"`
	SettingsFile    string   `yaml:"settings_file"`
	ExcludedFolders []string `yaml:"excluded_folders"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.SettingsFile, validation.Required),
		validation.Field(&c.ExcludedFolders, validation.Each(validation.Required, validation.By(validGlob))),
	)
}

// SettingsPath returns the absolute-or-vault-relative settings file path.
func (c *VaultConfig) SettingsPath() string {
	if filepath.IsAbs(c.SettingsFile) {
		return c.SettingsFile
	}
	return filepath.Join(c.Path, c.SettingsFile)
}

func validGlob(value interface{}) error {
	s, _ := value.(string)
	if _, err := path.Match(s, ""); err != nil {
		return errors.New("must be a valid folder or glob pattern")
	}
	return nil
}

// SQLiteConfig holds the rename journal database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Events: EventsConfig{
				VaultThrottle: 2 * time.Second,
			},
		},
		Vault: VaultConfig{
			Path:         "./vault",
			SettingsFile: ".headsync/data.json",
		},
		SQLite: SQLiteConfig{
			Path: "./headsync.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
