package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	logger  = newLogger(os.Stderr, slog.LevelWarn)
	logFile *os.File
	mu      sync.Mutex
	isSetup bool
	runID   = uuid.NewString()
)

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run_id", runID)
}

// SetupLogger sends log records to the given file. With debug set, debug
// records are written too.
func SetupLogger(logFilePath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	// Check if logger is already set up
	if isSetup {
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = newLogger(logFile, level)
	logger.Info("visiondb log started", "at", time.Now().Format(time.RFC3339))

	isSetup = true
	return nil
}

// SetOutput replaces the log destination, mainly for tests
func SetOutput(w io.Writer, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = newLogger(w, level)
}

// CloseLogger closes the log file and falls back to stderr
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger.Info("visiondb log closed", "at", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
		isSetup = false
		logger = newLogger(os.Stderr, slog.LevelWarn)
	}
}

// RunID identifies this process in every log record
func RunID() string {
	return runID
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// LogInfo logs an informational message
func LogInfo(msg string, args ...any) {
	current().Info(msg, args...)
}

// DebugLog logs a message if debug mode is enabled
func DebugLog(msg string, args ...any) {
	current().Debug(msg, args...)
}

// LogWarning logs a warning message
func LogWarning(msg string, args ...any) {
	current().Warn(msg, args...)
}

// LogError logs an error message
func LogError(msg string, args ...any) {
	current().Error(msg, args...)
}

// LogDocumentLoaded logs the outcome of loading one JSON document
func LogDocumentLoaded(path string, success bool, err error) {
	if success {
		current().Info("document loaded", "path", path)
		return
	}
	current().Error("document failed", "path", path, "error", err)
}
