package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/teciza/desk/internal/application/port"
	"github.com/teciza/desk/internal/domain/entity"
)

var ErrInvalidDocument = errors.New("invalid document")

// Fixture is a batch of documents and defaults written together
type Fixture struct {
	Documents []FixtureDocument `yaml:"documents" json:"documents"`
	Defaults  []FixtureDefault  `yaml:"defaults" json:"defaults"`
}

// FixtureDocument sets the lifecycle stage of one document
type FixtureDocument struct {
	Doctype   string `yaml:"doctype" json:"doctype"`
	Name      string `yaml:"name" json:"name"`
	DocStatus int    `yaml:"docstatus" json:"docstatus"`
}

// FixtureDefault sets one default. An empty parent means the global defaults.
type FixtureDefault struct {
	Parent string `yaml:"parent" json:"parent"`
	Key    string `yaml:"key" json:"key"`
	Value  string `yaml:"value" json:"value"`
}

// FixtureResult counts what Apply wrote
type FixtureResult struct {
	Documents int `json:"documents"`
	Defaults  int `json:"defaults"`
}

// StoreService writes the host state the desk reads: document stages and
// user defaults.
type StoreService interface {
	SaveDocument(ctx context.Context, doc *entity.Document) error
	SetDefault(ctx context.Context, parent, key, value string) error
	Default(ctx context.Context, user, key string) (string, error)
	Apply(ctx context.Context, fixture Fixture) (FixtureResult, error)
}

type storeServiceImpl struct {
	documentRepo port.DocumentRepository
	defaultsRepo port.DefaultsRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewStoreService creates a new StoreService
func NewStoreService(
	documentRepo port.DocumentRepository,
	defaultsRepo port.DefaultsRepository,
	txManager port.TransactionManager,
	logger Logger,
) StoreService {
	return &storeServiceImpl{
		documentRepo: documentRepo,
		defaultsRepo: defaultsRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *storeServiceImpl) SaveDocument(ctx context.Context, doc *entity.Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.documentRepo.Save(txCtx, doc); err != nil {
			s.logger.Error("Failed to save document", "error", err, "doctype", doc.Doctype, "name", doc.Name)
			return err
		}
		return nil
	})
}

func (s *storeServiceImpl) SetDefault(ctx context.Context, parent, key, value string) error {
	if key == "" {
		return errors.New("default key is required")
	}
	if parent == "" {
		parent = entity.GlobalDefaultsParent
	}
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.defaultsRepo.SetDefault(txCtx, parent, key, value); err != nil {
			s.logger.Error("Failed to set default", "error", err, "parent", parent, "key", key)
			return err
		}
		return nil
	})
}

// Default resolves key for user, falling back to the global value
func (s *storeServiceImpl) Default(ctx context.Context, user, key string) (string, error) {
	if user == "" {
		user = entity.GuestUser
	}
	value, err := s.defaultsRepo.GetUserDefault(ctx, user, key)
	if err != nil {
		s.logger.Error("Failed to load user default", "error", err, "user", user, "key", key)
		return "", fmt.Errorf("load default %s for %s: %w", key, user, err)
	}
	return value, nil
}

// Apply writes the whole fixture in one transaction. Defaults go first; any
// failure leaves the store as it was.
func (s *storeServiceImpl) Apply(ctx context.Context, fixture Fixture) (FixtureResult, error) {
	var result FixtureResult

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for i, d := range fixture.Defaults {
			if err := s.SetDefault(txCtx, d.Parent, d.Key, d.Value); err != nil {
				return fmt.Errorf("defaults[%d]: %w", i, err)
			}
			result.Defaults++
		}
		for i, d := range fixture.Documents {
			doc := &entity.Document{Doctype: d.Doctype, Name: d.Name, DocStatus: entity.DocStatus(d.DocStatus)}
			if err := s.SaveDocument(txCtx, doc); err != nil {
				return fmt.Errorf("documents[%d]: %w", i, err)
			}
			result.Documents++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Fixture rolled back", "error", err)
		return FixtureResult{}, err
	}

	s.logger.Info("Fixture applied", "documents", result.Documents, "defaults", result.Defaults)
	return result, nil
}

func validateDocument(doc *entity.Document) error {
	switch {
	case doc == nil:
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	case doc.Doctype == "":
		return fmt.Errorf("%w: doctype is required", ErrInvalidDocument)
	case doc.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidDocument)
	case !doc.DocStatus.IsValid():
		return fmt.Errorf("%w: %s", ErrInvalidDocument, doc.DocStatus)
	}
	return nil
}
