package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teciza/desk/internal/application/port"
	"github.com/teciza/desk/internal/domain/entity"
	"github.com/teciza/desk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// DefaultsRepository implements port.DefaultsRepository over default_values.
// Rows with parent = '__default' apply to every user.
type DefaultsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDefaultsRepository creates a new defaults repository
func NewDefaultsRepository(db *sql.DB, logger *zap.Logger) port.DefaultsRepository {
	return &DefaultsRepository{
		db:     db,
		logger: logger,
	}
}

// GetUserDefault returns the user's value for key, falling back to the
// global value. "" means no default.
func (r *DefaultsRepository) GetUserDefault(ctx context.Context, user, key string) (string, error) {
	query := `
		SELECT defvalue
		FROM default_values
		WHERE defkey = ? AND parent IN (?, ?)
		ORDER BY CASE WHEN parent = ? THEN 0 ELSE 1 END
		LIMIT 1
	`

	var value string
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query,
		key, user, entity.GlobalDefaultsParent, user,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		r.logger.Error("Failed to get user default",
			zap.String("user", user), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to get user default: %w", err)
	}

	return value, nil
}

// ListUserDefaults returns every default visible to user
func (r *DefaultsRepository) ListUserDefaults(ctx context.Context, user string) (map[string]string, error) {
	query := `
		SELECT parent, defkey, defvalue
		FROM default_values
		WHERE parent IN (?, ?)
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, user, entity.GlobalDefaultsParent)
	if err != nil {
		r.logger.Error("Failed to list user defaults", zap.String("user", user), zap.Error(err))
		return nil, fmt.Errorf("failed to list user defaults: %w", err)
	}
	defer rows.Close()

	global := make(map[string]string)
	own := make(map[string]string)
	for rows.Next() {
		var parent, key, value string
		if err := rows.Scan(&parent, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan user default: %w", err)
		}
		if parent == entity.GlobalDefaultsParent && user != entity.GlobalDefaultsParent {
			global[key] = value
		} else {
			own[key] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user defaults: %w", err)
	}

	for k, v := range own {
		global[k] = v
	}
	return global, nil
}

// SetDefault stores value under (parent, key), replacing any previous value
func (r *DefaultsRepository) SetDefault(ctx context.Context, parent, key, value string) error {
	query := `
		INSERT INTO default_values (parent, defkey, defvalue)
		VALUES (?, ?, ?)
		ON CONFLICT (parent, defkey) DO UPDATE SET defvalue = excluded.defvalue
	`

	if _, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, parent, key, value); err != nil {
		r.logger.Error("Failed to set default",
			zap.String("parent", parent), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set default: %w", err)
	}
	return nil
}

var _ port.DefaultsRepository = (*DefaultsRepository)(nil)
