package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teciza/desk/internal/application/port"
	"github.com/teciza/desk/internal/application/service"
	"github.com/teciza/desk/internal/infrastructure/i18n"
	"github.com/teciza/desk/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	db           *DatabaseBundle
	repositories *RepositoryBundle
	translations *i18n.Bundle
	clock        port.Clock

	// Application
	bindings *BindingBundle
	services *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Document port.DocumentRepository
	Defaults port.DefaultsRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Form   service.FormService
	Report service.ReportService
	Store  service.StoreService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database, migrations and repositories
// 2. Translations and clock
// 3. Form and report bindings
// 4. Application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db

	repos, err := ProvideRepositories(db.DB.DB, c.logger)
	if err != nil {
		return c.abort(fmt.Errorf("failed to initialize repositories: %w", err))
	}
	c.repositories = repos
	c.logger.Info("Database initialized", zap.String("path", c.config.Database.Path))

	bundle, err := ProvideTranslations(&c.config.Desk, c.logger)
	if err != nil {
		return c.abort(err)
	}
	c.translations = bundle
	c.clock = ProvideClock(&c.config.Desk)
	c.logger.Info("Translations loaded", zap.Strings("languages", bundle.Languages()))

	bindings, err := ProvideBindings(&c.config.Desk)
	if err != nil {
		return c.abort(err)
	}
	c.bindings = bindings
	c.logger.Info("Bindings registered",
		zap.String("request_url", c.config.Desk.RequestURL),
		zap.Strings("reports", bindings.Reports.Names()))

	services, err := ProvideServices(&ServiceDeps{
		Repositories: repos,
		TxManager:    c.db.TransactionMgr,
		Bindings:     bindings,
		Translations: bundle,
		Clock:        c.clock,
		Logger:       c.logger,
	})
	if err != nil {
		return c.abort(err)
	}
	c.services = services

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// abort releases what Start opened before failing.
func (c *Container) abort(err error) error {
	if c.db != nil {
		if closeErr := c.db.DB.Close(); closeErr != nil {
			c.logger.Error("Failed to close database", zap.Error(closeErr))
		}
		c.db = nil
	}
	return err
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return fmt.Errorf("container already closed")
	}
	c.ready.Store(false)

	c.logger.Info("Closing container")

	if c.db != nil {
		if err := c.db.DB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			return fmt.Errorf("close database: %w", err)
		}
	}

	c.logger.Info("Container closed")
	return nil
}

// Ready reports whether Start completed.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	mark := func(name string, h ComponentHealth) {
		status.Components[name] = h
		if !h.Healthy {
			status.Overall = false
		}
	}

	switch {
	case c.db == nil:
		mark("database", ComponentHealth{Message: "not initialized"})
	default:
		if err := c.db.DB.PingContext(ctx); err != nil {
			mark("database", ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)})
		} else {
			mark("database", ComponentHealth{Healthy: true})
		}
	}

	if c.translations == nil {
		mark("translations", ComponentHealth{Message: "not initialized"})
	} else {
		mark("translations", ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("languages: %v", c.translations.Languages()),
		})
	}

	if c.bindings == nil {
		mark("bindings", ComponentHealth{Message: "not initialized"})
	} else {
		mark("bindings", ComponentHealth{Healthy: true})
	}

	return status
}

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db.TransactionMgr
}

// Database returns the underlying store.
func (c *Container) Database() *database.DB {
	return c.db.DB
}

// Repositories returns the repository bundle.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns the service bundle.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Translations returns the loaded translation bundle.
func (c *Container) Translations() *i18n.Bundle {
	return c.translations
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// NewServiceLogger adapts zap.Logger to the key/value Logger used by
// services and HTTP handlers.
func NewServiceLogger(logger *zap.Logger) service.Logger {
	return &zapLoggerAdapter{logger: logger}
}

type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
