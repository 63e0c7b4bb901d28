package port

import (
	"context"

	"github.com/teciza/desk/internal/domain/entity"
)

// DocumentRepository stores the lifecycle state of documents.
// GetByName returns (nil, nil) when no such document exists.
type DocumentRepository interface {
	GetByName(ctx context.Context, doctype, name string) (*entity.Document, error)
	Save(ctx context.Context, doc *entity.Document) error
}

// DefaultsRepository resolves user defaults. User values shadow the global
// defaults stored under entity.GlobalDefaultsParent.
type DefaultsRepository interface {
	GetUserDefault(ctx context.Context, user, key string) (string, error)
	ListUserDefaults(ctx context.Context, user string) (map[string]string, error)
	SetDefault(ctx context.Context, parent, key, value string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
