package database

import (
	"context"
	"database/sql"
	"fmt"

	"visiondb/logging"
)

type tableDef struct {
	name    string
	columns []string
	ddl     string
	index   string
}

// schemaTables is in creation order: entity tables before the associations
// that reference them. Reset drops them in reverse.
var schemaTables = []tableDef{
	{
		name:    "image",
		columns: []string{"id", "url", "isDocument"},
		ddl: `CREATE TABLE IF NOT EXISTS image (
			id INTEGER PRIMARY KEY,
			url VARCHAR(256) NOT NULL UNIQUE,
			isDocument INT(1) NOT NULL DEFAULT 0
		)`,
	},
	{
		name:    "label",
		columns: []string{"id", "description"},
		ddl: `CREATE TABLE IF NOT EXISTS label (
			id VARCHAR(64) PRIMARY KEY,
			description VARCHAR(256)
		)`,
	},
	{
		name:    "page",
		columns: []string{"id", "url"},
		ddl: `CREATE TABLE IF NOT EXISTS page (
			id INTEGER PRIMARY KEY,
			url VARCHAR(256) NOT NULL UNIQUE
		)`,
	},
	{
		name:    "landmark",
		columns: []string{"id", "description"},
		ddl: `CREATE TABLE IF NOT EXISTS landmark (
			id VARCHAR(64) PRIMARY KEY,
			description VARCHAR(256)
		)`,
	},
	{
		name:    "location",
		columns: []string{"id", "latitude", "longitude"},
		ddl: `CREATE TABLE IF NOT EXISTS location (
			id INTEGER PRIMARY KEY,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			UNIQUE (latitude, longitude)
		)`,
	},
	{
		name:    "webEntity",
		columns: []string{"entityId", "description"},
		ddl: `CREATE TABLE IF NOT EXISTS webEntity (
			entityId VARCHAR(64) PRIMARY KEY,
			description VARCHAR(256)
		)`,
	},
	{
		name:    "image_tagged_label",
		columns: []string{"imageId", "labelId", "score"},
		ddl: `CREATE TABLE IF NOT EXISTS image_tagged_label (
			imageId INTEGER NOT NULL REFERENCES image(id),
			labelId VARCHAR(64) NOT NULL REFERENCES label(id),
			score REAL,
			PRIMARY KEY (imageId, labelId)
		)`,
		index: `CREATE INDEX IF NOT EXISTS idx_image_tagged_label_label ON image_tagged_label(labelId)`,
	},
	{
		name:    "image_in_page",
		columns: []string{"imageId", "pageId"},
		ddl: `CREATE TABLE IF NOT EXISTS image_in_page (
			imageId INTEGER NOT NULL REFERENCES image(id),
			pageId INTEGER NOT NULL REFERENCES page(id),
			PRIMARY KEY (imageId, pageId)
		)`,
		index: `CREATE INDEX IF NOT EXISTS idx_image_in_page_page ON image_in_page(pageId)`,
	},
	{
		name:    "image_matches_image",
		columns: []string{"imageId", "matchedImageId", "matchType"},
		ddl: `CREATE TABLE IF NOT EXISTS image_matches_image (
			imageId INTEGER NOT NULL REFERENCES image(id),
			matchedImageId INTEGER NOT NULL REFERENCES image(id),
			matchType VARCHAR(8) NOT NULL CHECK (matchType IN ('full', 'partial')),
			PRIMARY KEY (imageId, matchedImageId),
			CHECK (imageId < matchedImageId)
		)`,
		index: `CREATE INDEX IF NOT EXISTS idx_image_matches_image_matched ON image_matches_image(matchedImageId)`,
	},
	{
		name:    "image_contains_landmark",
		columns: []string{"imageId", "landmarkId"},
		ddl: `CREATE TABLE IF NOT EXISTS image_contains_landmark (
			imageId INTEGER NOT NULL REFERENCES image(id),
			landmarkId VARCHAR(64) NOT NULL REFERENCES landmark(id),
			PRIMARY KEY (imageId, landmarkId)
		)`,
		index: `CREATE INDEX IF NOT EXISTS idx_image_contains_landmark_landmark ON image_contains_landmark(landmarkId)`,
	},
	{
		name:    "image_tagged_webEntity",
		columns: []string{"imageId", "entityId"},
		ddl: `CREATE TABLE IF NOT EXISTS image_tagged_webEntity (
			imageId INTEGER NOT NULL REFERENCES image(id),
			entityId VARCHAR(64) NOT NULL REFERENCES webEntity(entityId),
			PRIMARY KEY (imageId, entityId)
		)`,
		index: `CREATE INDEX IF NOT EXISTS idx_image_tagged_webEntity_entity ON image_tagged_webEntity(entityId)`,
	},
	{
		name:    "landmark_located_at_location",
		columns: []string{"landmarkId", "locationId"},
		ddl: `CREATE TABLE IF NOT EXISTS landmark_located_at_location (
			landmarkId VARCHAR(64) NOT NULL REFERENCES landmark(id),
			locationId INTEGER NOT NULL REFERENCES location(id),
			PRIMARY KEY (landmarkId, locationId)
		)`,
		index: `CREATE INDEX IF NOT EXISTS idx_landmark_located_at_location_location ON landmark_located_at_location(locationId)`,
	},
}

// TableNames returns the schema's tables in creation order
func TableNames() []string {
	names := make([]string, len(schemaTables))
	for i, t := range schemaTables {
		names[i] = t.name
	}
	return names
}

// CreateSchema creates the tables of the schema.
//
// With reset set, every table is dropped first and all previously loaded data
// is lost. Without it, tables are only created when absent, and existing ones
// are checked for the expected columns; a mismatch is reported as a
// *SchemaError. The whole operation runs in one transaction.
func CreateSchema(ctx context.Context, db *sql.DB, reset bool) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if reset {
		logging.LogWarning("dropping all tables", "tables", len(schemaTables))
		for i := len(schemaTables) - 1; i >= 0; i-- {
			name := schemaTables[i].name
			if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
				return fmt.Errorf("drop table %s: %w: %w", name, ErrSchema, err)
			}
		}
	}

	for _, t := range schemaTables {
		if _, err := tx.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w: %w", t.name, ErrSchema, err)
		}
		if err := checkColumns(ctx, tx, t); err != nil {
			return err
		}
		if t.index != "" {
			if _, err := tx.ExecContext(ctx, t.index); err != nil {
				return fmt.Errorf("create index on %s: %w: %w", t.name, ErrSchema, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// checkColumns verifies an existing table carries every expected column
func checkColumns(ctx context.Context, tx *sql.Tx, t tableDef) error {
	rows, err := tx.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", t.name)
	if err != nil {
		return fmt.Errorf("inspect table %s: %w", t.name, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("inspect table %s: %w", t.name, err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect table %s: %w", t.name, err)
	}

	var missing []string
	for _, c := range t.columns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: t.name, Missing: missing}
	}
	return nil
}
