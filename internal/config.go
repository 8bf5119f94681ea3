package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Mirror  MirrorConfig      `yaml:"mirror"`
	Auth    AuthConfig        `yaml:"auth"`
	Works   WorksConfig       `yaml:"works"`
	Session SessionConfig     `yaml:"session"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Mirror.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Works.Validate(); err != nil {
		return err
	}
	return c.Session.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.CORSOrigins, validation.Each(validation.Required)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MirrorConfig holds the Markdown mirror settings. An empty Path disables
// the mirror and reports sync as restricted.
type MirrorConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Enabled reports whether works are mirrored to disk.
func (c *MirrorConfig) Enabled() bool {
	return c.Path != ""
}

// Validate validates the mirror configuration.
func (c *MirrorConfig) Validate() error {
	if c.Watch && c.Path == "" {
		return fmt.Errorf("mirror: watch is enabled but path is empty")
	}
	return nil
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

// WorksConfig holds defaults for new works and snapshots.
type WorksConfig struct {
	TitlePrefix string `yaml:"title_prefix"`
	DeviceName  string `yaml:"device_name"`
	DisplayName string `yaml:"display_name"`
}

// Validate validates the works configuration.
func (c *WorksConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TitlePrefix, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.DeviceName, validation.Length(0, 100)),
		validation.Field(&c.DisplayName, validation.By(func(v any) error {
			name, _ := v.(string)
			if name == "" {
				return nil
			}
			if _, ok := models.ParseDocumentKind(name); !ok {
				return fmt.Errorf("%q is not a document file name", name)
			}
			return nil
		})),
	)
}

// SessionConfig holds the identities allowed to sign in and the time budget
// of one verification or account-status check.
type SessionConfig struct {
	Users         []string      `yaml:"users"`
	VerifyTimeout time.Duration `yaml:"verify_timeout"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Users, validation.Each(validation.Required)),
		validation.Field(&c.VerifyTimeout, validation.Min(time.Duration(0))),
	)
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
		SQLite: SQLiteConfig{
			Path: "./quire.db",
		},
		Mirror: MirrorConfig{
			Path:  "./works",
			Watch: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Works: WorksConfig{
			TitlePrefix: "Work ",
			DeviceName:  "local",
			DisplayName: models.DocContent.FileName(),
		},
		Session: SessionConfig{
			VerifyTimeout: 10 * time.Second,
		},
	}
}
