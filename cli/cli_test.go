package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visiondb/config"
	"visiondb/database"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := executeCommand(root)
	return out.String(), err
}

func writeDocuments(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	docs := map[string]string{
		"1.json": `{"url": "http://x/1.jpg", "labelAnnotations": [{"id": "/m/015kr", "description": "Bridge", "score": 0.9}]}`,
		"2.json": `{"url": "http://x/2.jpg", "labelAnnotations": [{"id": "/m/015kr", "description": "Bridge", "score": 0.75}]}`,
	}
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestRunCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeDocuments(t, filepath.Join(dir, "data", "json"))

	out, err := execute(t, "run")
	require.NoError(t, err)

	assert.Contains(t, out, "Loaded 2/2 documents")
	assert.Contains(t, out, "\nQuery 3\n    http://x/1.jpg\t0.9\n    http://x/2.jpg\t0.75\n")
	assert.FileExists(t, filepath.Join(dir, "data", "sqlite.db"))

	// Running again resets first, so nothing is counted twice
	out, err = execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING: resetting")
	assert.Contains(t, out, "\nQuery 0\n    2\n")
}

func TestLoadAndQueryCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	jsonDir := filepath.Join(dir, "docs")
	dbPath := filepath.Join(dir, "vision.db")
	writeDocuments(t, jsonDir)

	_, err := execute(t, "schema", "--db", dbPath)
	require.NoError(t, err)

	out, err := execute(t, "load", "--json-dir", jsonDir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "image_tagged_label\t2")

	// Loading the same folder again adds no rows
	_, err = execute(t, "load", "--json-dir", jsonDir, "--db", dbPath)
	require.NoError(t, err)

	out, err = execute(t, "query", "--db", dbPath, "--only", "0,6", "--show-sql")
	require.NoError(t, err)
	assert.Contains(t, out, "\nQuery 0\n    SELECT COUNT(*) FROM image\n    2\n")
	assert.Contains(t, out, "    /m/015kr\tBridge\t2\n")
	assert.NotContains(t, out, "Query 3")
}

func TestQueryCommand_BadSelection(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "query", "--only", "42")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCodeForError(err))

	_, err = execute(t, "query", "--only", "a")
	assert.Equal(t, ExitConfigError, ExitCodeForError(err))
}

func TestSchemaCommand_IncompatibleDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dbPath := filepath.Join(dir, "old.db")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE page (id INTEGER PRIMARY KEY, address TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = execute(t, "schema", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitSchemaError, ExitCodeForError(err))

	out, err := execute(t, "schema", "--db", dbPath, "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING: resetting")
	assert.Contains(t, out, "Schema ready")
}

func TestLoadCommand_MissingFolder(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := execute(t, "load", "--json-dir", filepath.Join(dir, "nope"), "--db", filepath.Join(dir, "x.db"))
	require.Error(t, err)
	assert.Equal(t, ExitGeneralError, ExitCodeForError(err))
}

func TestLoadCommand_FailureClosesDebugLog(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	logPath := filepath.Join(dir, "debug.log")

	_, err := execute(t, "load", "--debug", "--log-file", logPath,
		"--json-dir", filepath.Join(dir, "nope"), "--db", filepath.Join(dir, "x.db"))
	require.Error(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visiondb log started")
	assert.Contains(t, string(data), "load stopped")
	assert.Contains(t, string(data), "visiondb log closed")
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"config", fmt.Errorf("load: %w", config.ErrInvalidConfig), ExitConfigError},
		{"schema", &database.SchemaError{Table: "image", Missing: []string{"url"}}, ExitSchemaError},
		{"consistency", fmt.Errorf("load a.json: %w", database.ErrConsistency), ExitConsistency},
		{"interrupted", fmt.Errorf("load cancelled: %w", context.Canceled), ExitInterrupted},
		{"other", errors.New("disk full"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}
