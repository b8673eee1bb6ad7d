package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "data", s.DataDir)
	assert.Equal(t, filepath.Join("data", "json"), s.JSONDir)
	assert.Equal(t, filepath.Join("data", "sqlite.db"), s.DBPath)
	assert.True(t, s.Reset)
	assert.False(t, s.Debug)
	assert.False(t, s.ShowSQL)
	assert.Equal(t, "visiondb.log", s.LogFile)
}

func TestLoad_EnvironmentDerivesPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VISIONDB_DATADIR", "/srv/vision")
	t.Setenv("VISIONDB_RESET", "false")

	s, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/srv/vision", "json"), s.JSONDir)
	assert.Equal(t, filepath.Join("/srv/vision", "sqlite.db"), s.DBPath)
	assert.False(t, s.Reset)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dbpath: /tmp/vision.db\nreset: false\nshowsql: true\n"), 0o644))

	s, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/vision.db", s.DBPath)
	assert.Equal(t, filepath.Join("data", "json"), s.JSONDir)
	assert.False(t, s.Reset)
	assert.True(t, s.ShowSQL)
}

func TestLoad_DefaultConfigFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("jsondir: docs\n"), 0o644))

	s, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "docs", s.JSONDir)
}

func TestLoad_EnvironmentBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("jsondir: docs\n"), 0o644))
	t.Setenv("VISIONDB_JSONDIR", "other")

	s, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "other", s.JSONDir)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VISIONDB_DBPATH=from-dotenv.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("VISIONDB_DBPATH") })

	s, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", s.DBPath)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(viper.New(), "does-not-exist.yaml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	valid := Settings{JSONDir: "data/json", DBPath: "data/sqlite.db", LogFile: "visiondb.log"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		settings Settings
		problems int
	}{
		{"empty paths", Settings{}, 2},
		{"debug without log file", Settings{JSONDir: "a", DBPath: "b", Debug: true}, 1},
		{"same path", Settings{JSONDir: "a", DBPath: "a"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var joined interface{ Unwrap() []error }
			require.True(t, errors.As(err, &joined))
			assert.Len(t, joined.Unwrap(), tt.problems)
		})
	}
}
