package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/teciza/desk/internal/application/port"
	"github.com/teciza/desk/internal/domain/entity"
	"github.com/teciza/desk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// DocumentRepository implements port.DocumentRepository
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByName loads the lifecycle state of one document
func (r *DocumentRepository) GetByName(ctx context.Context, doctype, name string) (*entity.Document, error) {
	query := `
		SELECT doctype, name, docstatus, modified
		FROM documents
		WHERE doctype = ? AND name = ?
	`

	var doc entity.Document
	var status int
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, doctype, name).Scan(
		&doc.Doctype,
		&doc.Name,
		&status,
		&doc.Modified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document",
			zap.String("doctype", doctype), zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.DocStatus = entity.DocStatus(status)
	if !doc.DocStatus.IsValid() {
		return nil, fmt.Errorf("document %s %s has invalid docstatus %d", doctype, name, status)
	}

	return &doc, nil
}

// Save inserts the document or updates its docstatus and modified time
func (r *DocumentRepository) Save(ctx context.Context, doc *entity.Document) error {
	if doc == nil || doc.Doctype == "" || doc.Name == "" {
		return errors.New("document doctype and name are required")
	}
	if !doc.DocStatus.IsValid() {
		return fmt.Errorf("invalid docstatus %d", doc.DocStatus)
	}
	if doc.Modified.IsZero() {
		doc.Modified = time.Now().UTC()
	}

	query := `
		INSERT INTO documents (doctype, name, docstatus, modified)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (doctype, name) DO UPDATE SET
			docstatus = excluded.docstatus,
			modified = excluded.modified
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		doc.Doctype, doc.Name, int(doc.DocStatus), doc.Modified)
	if err != nil {
		r.logger.Error("Failed to save document",
			zap.String("doctype", doc.Doctype), zap.String("name", doc.Name), zap.Error(err))
		return fmt.Errorf("failed to save document: %w", err)
	}

	r.logger.Info("Document saved",
		zap.String("doctype", doc.Doctype),
		zap.String("name", doc.Name),
		zap.Stringer("docstatus", doc.DocStatus))
	return nil
}

var _ port.DocumentRepository = (*DocumentRepository)(nil)
