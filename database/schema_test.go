package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSchema_CreatesAllTables(t *testing.T) {
	db := newTestDB(t)

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())

	assert.Len(t, TableNames(), 12)
	assert.ElementsMatch(t, TableNames(), names)
}

func TestCreateSchema_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := EnsureImage(ctx, db, "http://x/1.jpg")
	require.NoError(t, err)

	require.NoError(t, CreateSchema(ctx, db, false))
	require.NoError(t, CreateSchema(ctx, db, false))
	assert.EqualValues(t, 1, countRows(t, db, "image"))
}

func TestCreateSchema_ResetLeavesEmptyTables(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	img, err := EnsureImage(ctx, db, "http://x/1.jpg")
	require.NoError(t, err)
	label, err := EnsureLabel(ctx, db, "/m/015kr", "Bridge")
	require.NoError(t, err)
	_, err = TagLabel(ctx, db, img, label, nil)
	require.NoError(t, err)

	require.NoError(t, CreateSchema(ctx, db, true))

	stats, err := GetLoadStats(ctx, db)
	require.NoError(t, err)
	require.Len(t, stats.Tables, 12)
	for _, tc := range stats.Tables {
		assert.Zero(t, tc.Rows, "table %s", tc.Table)
	}
}

func TestCreateSchema_IncompatibleTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := OpenDatabase(path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE image (id INTEGER PRIMARY KEY, path TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = InitDatabase(ctx, path, false)
	require.ErrorIs(t, err, ErrSchema)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "image", schemaErr.Table)
	assert.Equal(t, []string{"url", "isDocument"}, schemaErr.Missing)

	// A reset replaces the incompatible table
	db, err = InitDatabase(ctx, path, true)
	require.NoError(t, err)
	defer db.Close()
	_, err = EnsureImage(ctx, db, "http://x/1.jpg")
	assert.NoError(t, err)
}

func TestGetLoadStats_Count(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := EnsurePage(ctx, db, "http://example.com/a")
	require.NoError(t, err)

	stats, err := GetLoadStats(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Count("page"))
	assert.EqualValues(t, 0, stats.Count("image"))
	assert.EqualValues(t, -1, stats.Count("nope"))
}
