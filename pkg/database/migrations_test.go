package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teciza/desk/migrations"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path:         filepath.Join(t.TempDir(), "desk.db"),
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoad_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 1;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"README.md":      {Data: []byte("not a migration")},
	}

	migs, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, migs, 2)

	assert.Equal(t, 2, migs[0].Version)
	assert.Equal(t, "second", migs[0].Name)
	assert.Equal(t, 10, migs[1].Version)
	assert.Equal(t, "later", migs[1].Name)
}

func TestLoad_RejectsBadNames(t *testing.T) {
	t.Run("non numeric prefix", func(t *testing.T) {
		_, err := Load(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid migration filename")
	})

	t.Run("duplicate version", func(t *testing.T) {
		_, err := Load(fstest.MapFS{
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"1_b.sql":   {Data: []byte("SELECT 1;")},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate migration version")
	})
}

func TestMigrator_RunEmbeddedSchema(t *testing.T) {
	db := openTestDB(t)
	migrator := NewMigrator(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, migrator.Run(ctx, migrations.FS))
	// second run is a no-op
	require.NoError(t, migrator.Run(ctx, migrations.FS))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	_, err := db.Exec("INSERT INTO documents (doctype, name, docstatus) VALUES ('WPS', 'WPS-0001', 1)")
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO documents (doctype, name, docstatus) VALUES ('WPS', 'WPS-0002', 5)")
	assert.Error(t, err, "docstatus outside 0..2 must be rejected")

	_, err = db.Exec("INSERT INTO default_values (parent, defkey, defvalue) VALUES ('__default', 'Company', 'Teciza')")
	require.NoError(t, err)
}

func TestMigrator_FailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	err := migrator.Run(context.Background(), fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE ok_table (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE broken (")},
	})
	require.Error(t, err)

	var versions []int
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		versions = append(versions, v)
	}
	assert.Equal(t, []int{1}, versions)
}
