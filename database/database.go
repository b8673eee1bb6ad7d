package database

import (
	"context"
	"database/sql"
	"fmt"

	"visiondb/logging"

	_ "github.com/mattn/go-sqlite3"
)

// Querier is the part of *sql.DB and *sql.Tx the loaders need
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dsn enables foreign keys and waits on a busy file instead of failing at once
func dsn(dbPath string) string {
	return dbPath + "?_foreign_keys=on&_busy_timeout=5000"
}

// OpenDatabase opens a database connection without touching the schema.
// The pool is held to one connection: every statement and transaction of a
// run goes through the same SQLite handle.
func OpenDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	return db, nil
}

// InitDatabase opens dbPath and makes sure the schema exists.
// With reset set, every table is dropped and recreated first.
func InitDatabase(ctx context.Context, dbPath string, reset bool) (*sql.DB, error) {
	db, err := OpenDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	if err := CreateSchema(ctx, db, reset); err != nil {
		db.Close()
		return nil, err
	}
	logging.DebugLog("database ready", "path", dbPath, "reset", reset)
	return db, nil
}

// LoadStats contains row counts for every table
type LoadStats struct {
	Tables []TableCount
}

// TableCount is the number of rows in one table
type TableCount struct {
	Table string
	Rows  int64
}

// Count returns the row count recorded for table, or -1 if it is unknown
func (s *LoadStats) Count(table string) int64 {
	for _, tc := range s.Tables {
		if tc.Table == table {
			return tc.Rows
		}
	}
	return -1
}

// GetLoadStats retrieves row counts for every table of the schema
func GetLoadStats(ctx context.Context, db Querier) (*LoadStats, error) {
	stats := &LoadStats{}
	for _, t := range schemaTables {
		var n int64
		// Table names come from the fixed schema list, never from input.
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(t.name)).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t.name, err)
		}
		stats.Tables = append(stats.Tables, TableCount{Table: t.name, Rows: n})
	}
	return stats, nil
}
