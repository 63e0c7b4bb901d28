// Package sqlite carries desk transactions through the request context.
// Repositories pick them up with ExecutorFor.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/teciza/desk/internal/application/port"
)

type contextKey string

const (
	txKey    contextKey = "tx"
	depthKey contextKey = "savepoint_depth"
)

// DB implements port.TransactionManager. The outermost WithTransaction owns
// a sql.Tx; nested calls run inside a savepoint of it, so a failing inner
// unit is undone without aborting the caller's work.
type DB struct {
	sqlDB  *sql.DB
	logger *zap.Logger
}

// NewDB creates a transaction manager over sqlDB
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	return &DB{sqlDB: sqlDB, logger: logger}
}

// WithTransaction runs fn in a transaction carried by the context
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := ExtractTx(ctx); tx != nil {
		return db.withSavepoint(ctx, tx, fn)
	}

	tx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func (db *DB) withSavepoint(ctx context.Context, tx *sql.Tx, fn func(ctx context.Context) error) error {
	depth := SavepointDepth(ctx) + 1
	name := fmt.Sprintf("desk_sp_%d", depth)

	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to open savepoint %s: %w", name, err)
	}

	released := false
	defer func() {
		if released {
			return
		}
		// ROLLBACK TO keeps the savepoint open; RELEASE drops it
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
			db.logger.Error("Failed to rollback savepoint", zap.String("savepoint", name), zap.Error(err))
			return
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
			db.logger.Error("Failed to release savepoint", zap.String("savepoint", name), zap.Error(err))
		}
	}()

	if err := fn(context.WithValue(ctx, depthKey, depth)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	released = true
	return nil
}

// ExtractTx retrieves the transaction carried by ctx, if any
func ExtractTx(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txKey).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// SavepointDepth is the number of nested WithTransaction calls open in ctx
// below the outermost one.
func SavepointDepth(ctx context.Context) int {
	depth, _ := ctx.Value(depthKey).(int)
	return depth
}

// Executor covers both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ExecutorFor returns the transaction in ctx, or db when there is none
func ExecutorFor(ctx context.Context, db *sql.DB) Executor {
	if tx := ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}

var _ port.TransactionManager = (*DB)(nil)
