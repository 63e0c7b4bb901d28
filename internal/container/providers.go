package container

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/teciza/desk/internal/application/port"
	"github.com/teciza/desk/internal/application/service"
	"github.com/teciza/desk/internal/domain/form"
	"github.com/teciza/desk/internal/domain/report"
	"github.com/teciza/desk/internal/infrastructure/i18n"
	"github.com/teciza/desk/internal/infrastructure/persistence/repository"
	"github.com/teciza/desk/internal/infrastructure/persistence/sqlite"
	"github.com/teciza/desk/migrations"
	"github.com/teciza/desk/pkg/database"
	"github.com/teciza/desk/pkg/utils"
	"github.com/teciza/desk/translations"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// BindingBundle holds the registered form and report bindings.
type BindingBundle struct {
	Events  *form.Events
	Reports *report.Registry
}

// ProvideDatabase opens the store and applies pending migrations.
func ProvideDatabase(ctx context.Context, cfg *database.Config, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(*cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Document: repository.NewDocumentRepository(sqlDB, logger),
		Defaults: repository.NewDefaultsRepository(sqlDB, logger),
	}, nil
}

// ProvideTranslations loads the embedded translations, or the files in dir
// when one is configured.
func ProvideTranslations(cfg *DeskConfig, logger *zap.Logger) (*i18n.Bundle, error) {
	bundle, err := i18n.NewBundle(cfg.DefaultLanguage, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = translations.FS
	if cfg.TranslationsDir != "" {
		source = os.DirFS(cfg.TranslationsDir)
	}

	if err := bundle.LoadFS(source); err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	return bundle, nil
}

// ProvideBindings registers every form and report binding the desk serves.
func ProvideBindings(cfg *DeskConfig) (*BindingBundle, error) {
	events := form.NewEvents()
	form.BindWPS(events, form.BindingConfig{RequestURL: cfg.RequestURL})

	reports := report.NewRegistry()
	if err := report.RegisterWPS(reports); err != nil {
		return nil, fmt.Errorf("register WPS report: %w", err)
	}

	return &BindingBundle{Events: events, Reports: reports}, nil
}

// ProvideClock returns the clock report defaults are computed against.
func ProvideClock(cfg *DeskConfig) port.Clock {
	if !cfg.Today.IsZero() {
		return utils.FixedClock{Date: cfg.Today}
	}
	return utils.SystemClock{Location: cfg.Location}
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repositories *RepositoryBundle
	TxManager    port.TransactionManager
	Bindings     *BindingBundle
	Translations port.Translations
	Clock        port.Clock
	Logger       *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repositories == nil || deps.Bindings == nil || deps.TxManager == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}

	logger := NewServiceLogger(deps.Logger)

	return &ServiceBundle{
		Form: service.NewFormService(
			deps.Repositories.Document,
			deps.Bindings.Events,
			deps.Translations,
			logger,
		),
		Report: service.NewReportService(
			deps.Bindings.Reports,
			deps.Repositories.Defaults,
			deps.Clock,
			deps.Translations,
			logger,
		),
		Store: service.NewStoreService(
			deps.Repositories.Document,
			deps.Repositories.Defaults,
			deps.TxManager,
			logger,
		),
	}, nil
}
