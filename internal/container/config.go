// Package container provides dependency injection and lifecycle management
// for the desk service.
package container

import (
	"errors"
	"fmt"
	"time"

	"github.com/teciza/desk/internal/config"
	"github.com/teciza/desk/pkg/database"
)

// Config holds everything the Container needs to build its components.
type Config struct {
	Database database.Config
	Desk     DeskConfig
}

// DeskConfig holds binding and localization settings.
type DeskConfig struct {
	// RequestURL is the base endpoint of generated download links
	RequestURL string

	// DefaultLanguage is the language source strings are written in
	DefaultLanguage string

	// TranslationsDir replaces the embedded translations when set
	TranslationsDir string

	// Location decides which calendar day "today" is
	Location *time.Location

	// Today pins the report clock to a fixed date when non-zero
	Today time.Time
}

// FromAppConfig maps the loaded application configuration.
func FromAppConfig(cfg *config.Config) (*Config, error) {
	loc, err := cfg.Desk.Location()
	if err != nil {
		return nil, fmt.Errorf("desk timezone: %w", err)
	}

	return &Config{
		Database: database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			BusyTimeout:     cfg.Database.BusyTimeout,
		},
		Desk: DeskConfig{
			RequestURL:      cfg.Desk.RequestURL,
			DefaultLanguage: cfg.Desk.DefaultLanguage,
			TranslationsDir: cfg.Desk.TranslationsDir,
			Location:        loc,
		},
	}, nil
}

// Validate checks the settings required to start.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Desk.RequestURL == "" {
		return errors.New("desk request URL is required")
	}
	if c.Desk.DefaultLanguage == "" {
		return errors.New("desk default language is required")
	}
	return nil
}
