package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teciza/desk/internal/application/port"
	"github.com/teciza/desk/internal/domain/report"
)

var ErrReportNotFound = errors.New("report not found")

// ReportService builds report filter panels
type ReportService interface {
	Filters(ctx context.Context, session Session, name string) ([]report.FilterDescriptor, error)
	Reports() []string
}

type reportServiceImpl struct {
	registry     *report.Registry
	defaultsRepo port.DefaultsRepository
	clock        port.Clock
	translations port.Translations
	logger       Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	registry *report.Registry,
	defaultsRepo port.DefaultsRepository,
	clock port.Clock,
	translations port.Translations,
	logger Logger,
) ReportService {
	return &reportServiceImpl{
		registry:     registry,
		defaultsRepo: defaultsRepo,
		clock:        clock,
		translations: translations,
		logger:       logger,
	}
}

// Filters evaluates the report's declaration for session. The clock is read
// once and the user's defaults are loaded once, so every descriptor sees
// the same ambient state.
func (s *reportServiceImpl) Filters(ctx context.Context, session Session, name string) ([]report.FilterDescriptor, error) {
	def, ok := s.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}

	defaults, err := s.defaultsRepo.ListUserDefaults(ctx, session.User)
	if err != nil {
		s.logger.Error("Failed to load user defaults", "error", err, "user", session.User)
		return nil, fmt.Errorf("load user defaults: %w", err)
	}

	env := report.Env{
		Clock:    snapshotClock{today: s.clock.Today()},
		Defaults: report.MapDefaults(defaults),
	}
	if s.translations != nil {
		env.Translator = s.translations.For(session.Language)
	}

	filters := def.Filters(env)
	if err := report.Validate(filters); err != nil {
		s.logger.Error("Invalid filter declaration", "error", err, "report", name)
		return nil, fmt.Errorf("report %s: %w", name, err)
	}

	return filters, nil
}

// Reports lists the declared reports
func (s *reportServiceImpl) Reports() []string {
	return s.registry.Names()
}

type snapshotClock struct {
	today time.Time
}

func (c snapshotClock) Today() time.Time {
	return c.today
}
