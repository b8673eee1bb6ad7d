package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput_Levels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	DebugLog("hidden")
	LogInfo("shown", "count", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "count=3")
	assert.Contains(t, buf.String(), "run_id="+RunID())

	buf.Reset()
	SetOutput(&buf, true)
	DebugLog("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestLogDocumentLoaded(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	LogDocumentLoaded("a.json", true, nil)
	LogDocumentLoaded("b.json", false, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "path=a.json")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visiondb.log")
	require.NoError(t, SetupLogger(path, true))

	// A second setup keeps the first file
	require.NoError(t, SetupLogger(filepath.Join(t.TempDir(), "other.log"), true))

	LogWarning("disk almost full", "free", "1%")
	CloseLogger()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visiondb log started")
	assert.Contains(t, string(data), "disk almost full")
	assert.Contains(t, string(data), "visiondb log closed")
}
