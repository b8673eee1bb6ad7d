package scanner

import (
	"io"
	"time"
)

// ScanOptions defines the options for scanning
type ScanOptions struct {
	JSONDir          string
	DebugMode        bool
	Output           io.Writer     // progress and statistics; nil means stdout
	ProgressInterval time.Duration // minimum time between progress lines; 0 means 500ms
}

// ProcessDocumentResult holds the result of processing one JSON file
type ProcessDocumentResult struct {
	Path     string
	Success  bool
	Error    error
	Rows     int      // association rows added
	Skipped  []string // sections present but unreadable
	ReadFail bool     // the file could not be read or parsed
}

// FileFailure records a file that could not be loaded
type FileFailure struct {
	Path  string
	Error error
}

// ScanSummary contains the outcome of a scan
type ScanSummary struct {
	Found    int
	Loaded   int
	Failed   int
	Rows     int
	Skipped  int // documents with at least one unreadable section
	Failures []FileFailure
	Elapsed  time.Duration
}
