package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE notes (body TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func insertNote(ctx context.Context, db *sql.DB, body string) error {
	_, err := ExecutorFor(ctx, db).ExecContext(ctx, `INSERT INTO notes (body) VALUES (?)`, body)
	return err
}

func notes(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT body FROM notes ORDER BY rowid`)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var body string
		require.NoError(t, rows.Scan(&body))
		out = append(out, body)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestWithTransaction_CommitAndRollback(t *testing.T) {
	db := openTestDB(t)
	tm := NewDB(db, zap.NewNop())
	ctx := context.Background()

	err := tm.WithTransaction(ctx, func(txCtx context.Context) error {
		assert.NotNil(t, ExtractTx(txCtx))
		assert.Equal(t, 0, SavepointDepth(txCtx))
		return insertNote(txCtx, db, "kept")
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tm.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, insertNote(txCtx, db, "dropped"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"kept"}, notes(t, db))
}

func TestWithTransaction_NestedFailureRollsBackToSavepoint(t *testing.T) {
	db := openTestDB(t)
	tm := NewDB(db, zap.NewNop())
	boom := errors.New("boom")

	err := tm.WithTransaction(context.Background(), func(txCtx context.Context) error {
		require.NoError(t, insertNote(txCtx, db, "outer"))

		inner := tm.WithTransaction(txCtx, func(spCtx context.Context) error {
			assert.Equal(t, 1, SavepointDepth(spCtx))
			assert.Same(t, ExtractTx(txCtx), ExtractTx(spCtx))
			require.NoError(t, insertNote(spCtx, db, "inner"))
			return boom
		})
		assert.ErrorIs(t, inner, boom)

		return tm.WithTransaction(txCtx, func(spCtx context.Context) error {
			return insertNote(spCtx, db, "second inner")
		})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"outer", "second inner"}, notes(t, db))
}

func TestWithTransaction_OuterFailureDiscardsReleasedSavepoints(t *testing.T) {
	db := openTestDB(t)
	tm := NewDB(db, zap.NewNop())
	boom := errors.New("boom")

	err := tm.WithTransaction(context.Background(), func(txCtx context.Context) error {
		require.NoError(t, tm.WithTransaction(txCtx, func(spCtx context.Context) error {
			return tm.WithTransaction(spCtx, func(deeper context.Context) error {
				assert.Equal(t, 2, SavepointDepth(deeper))
				return insertNote(deeper, db, "deep")
			})
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Empty(t, notes(t, db))
}

func TestWithTransaction_PanicRollsBack(t *testing.T) {
	db := openTestDB(t)
	tm := NewDB(db, zap.NewNop())

	assert.Panics(t, func() {
		_ = tm.WithTransaction(context.Background(), func(txCtx context.Context) error {
			require.NoError(t, insertNote(txCtx, db, "dropped"))
			panic("handler crashed")
		})
	})

	assert.Empty(t, notes(t, db))
}

func TestExecutorFor_WithoutTransaction(t *testing.T) {
	db := openTestDB(t)

	assert.Equal(t, Executor(db), ExecutorFor(context.Background(), db))
	assert.Nil(t, ExtractTx(context.Background()))
	assert.Equal(t, 0, SavepointDepth(context.Background()))
}
