package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "json"), GetDefaultJSONDir(""))
	assert.Equal(t, filepath.Join("data", "sqlite.db"), GetDefaultDatabasePath(""))
	assert.Equal(t, filepath.Join("/srv", "json"), GetDefaultJSONDir("/srv"))
	assert.Equal(t, filepath.Join("/srv", "sqlite.db"), GetDefaultDatabasePath("/srv"))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{[]byte("bytes"), "bytes"},
		{"text", "text"},
		{int64(42), "42"},
		{0.75, "0.75"},
		{float64(3), "3"},
		{true, "1"},
		{false, "0"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
		{int32(7), "7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestFormatRow(t *testing.T) {
	assert.Equal(t, "http://x/1.jpg\t0.9\tNULL", FormatRow([]any{"http://x/1.jpg", 0.9, nil}))
	assert.Equal(t, "", FormatRow(nil))
}

func TestParseQueryNumbers(t *testing.T) {
	got, err := ParseQueryNumbers(" 0, 3,5 ")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 5}, got)

	got, err = ParseQueryNumbers("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseQueryNumbers("1,x")
	assert.Error(t, err)

	_, err = ParseQueryNumbers("-1")
	assert.Error(t, err)
}
