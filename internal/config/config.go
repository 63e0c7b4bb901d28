package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Desk     DeskConfig     `mapstructure:"desk"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// DeskConfig holds the settings shared by the form and report bindings
type DeskConfig struct {
	// RequestURL is the base endpoint download links are built against
	RequestURL      string `mapstructure:"request_url"`
	DefaultLanguage string `mapstructure:"default_language"`
	// TranslationsDir overrides the embedded translations when set
	TranslationsDir string `mapstructure:"translations_dir"`
	Timezone        string `mapstructure:"timezone"`
}

// Location resolves the configured timezone, UTC when unset
func (d DeskConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(d.Timezone)
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load loads configuration from file and environment variables.
// An empty configPath uses defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.path", "data/desk.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.busy_timeout", 5*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("desk.request_url", "/")
	v.SetDefault("desk.default_language", "en")
	v.SetDefault("desk.timezone", "UTC")
}

func bindEnvVars(v *viper.Viper) {
	// secrets never live in the config file
	_ = v.BindEnv("auth.jwt_secret", "DESK_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("desk.request_url", "DESK_REQUEST_URL")
	_ = v.BindEnv("database.path", "DESK_DB_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test: %q", c.Server.Mode)
	}

	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}

	if c.Desk.RequestURL == "" {
		return errors.New("desk.request_url is required")
	}
	if strings.Contains(c.Desk.RequestURL, "?") {
		return fmt.Errorf("desk.request_url must not carry a query string: %q", c.Desk.RequestURL)
	}

	if c.Desk.DefaultLanguage == "" {
		return errors.New("desk.default_language is required")
	}

	if _, err := c.Desk.Location(); err != nil {
		return fmt.Errorf("desk.timezone: %w", err)
	}

	return nil
}
