package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cardex/internal/vcard"
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
	Parser ParserConfig      `yaml:"parser"`
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
	LogLevel slog.Level `yaml:"log_level" env:"CARDEX_LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"CARDEX_HTTP_PORT"`
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

// VaultConfig holds the card vault directory and the upload size cap.
type VaultConfig struct {
	Path        string `yaml:"path" env:"CARDEX_VAULT_PATH"`
	MaxUploadMB int    `yaml:"max_upload_mb" env:"CARDEX_MAX_UPLOAD_MB"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MaxUploadMB, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *VaultConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// ParserConfig tunes vCard parsing.
type ParserConfig struct {
	// LenientDates keeps cards whose BDAY or ANNIVERSARY cannot be built,
	// leaving the date unset instead of failing the parse.
	LenientDates bool `yaml:"lenient_dates" env:"CARDEX_LENIENT_DATES"`
}

// ParseOptions converts the configuration to parser options. A non-nil
// logger receives the parser's diagnostics.
func (c *ParserConfig) ParseOptions(logger *slog.Logger) []vcard.ParseOption {
	var opts []vcard.ParseOption
	if logger != nil {
		opts = append(opts, vcard.WithLogger(logger))
	}
	if c.LenientDates {
		opts = append(opts, vcard.WithLenientDates())
	}
	return opts
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"CARDEX_SQLITE_PATH"`
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
	Mode  string `yaml:"mode" env:"CARDEX_AUTH_MODE"`
	Token string `yaml:"token" env:"CARDEX_AUTH_TOKEN"`
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
		},
		Vault: VaultConfig{
			Path:        "./vault",
			MaxUploadMB: 1,
		},
		SQLite: SQLiteConfig{
			Path: "./cardex.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
