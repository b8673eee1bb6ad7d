// Package scanner loads every Vision JSON document of a folder.
package scanner

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"visiondb/loader"
	"visiondb/logging"
	"visiondb/vision"
)

// ScanAndLoadFolder loads the JSON documents directly inside options.JSONDir
// in lexical order. Files that cannot be read or parsed are counted and
// skipped. A database failure while loading a document stops the scan and is
// returned together with the summary so far. Cancelling ctx stops the scan
// before the next document.
func ScanAndLoadFolder(ctx context.Context, db *sql.DB, options ScanOptions) (*ScanSummary, error) {
	out := options.Output
	if out == nil {
		out = os.Stdout
	}

	files, err := ListJSONFiles(options.JSONDir)
	if err != nil {
		return nil, err
	}

	// Display initial information
	PrintStartupInfo(out, len(files), options)

	tracker := NewProgressTracker(out, len(files), options.ProgressInterval)
	ld := loader.NewLoader(db)

	startTime := time.Now()
	runErr := loadFiles(ctx, ld, files, tracker)
	tracker.Stop()

	summary := tracker.Summary()
	summary.Elapsed = time.Since(startTime)

	// Print final statistics
	PrintCompletionStats(out, summary, options)

	return &summary, runErr
}

func loadFiles(ctx context.Context, ld *loader.Loader, files []string, tracker *ProgressTracker) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			logging.LogWarning("load cancelled", "next", path)
			return fmt.Errorf("load cancelled: %w", err)
		}

		result := processDocument(ctx, ld, path)
		tracker.Record(result)
		if !result.Success && !result.ReadFail {
			return result.Error
		}
	}
	return nil
}

// processDocument reads, parses and stores a single JSON file
func processDocument(ctx context.Context, ld *loader.Loader, path string) ProcessDocumentResult {
	result := ProcessDocumentResult{Path: path}

	f, err := os.Open(path)
	if err != nil {
		result.ReadFail = true
		result.Error = fmt.Errorf("cannot open file %s: %w", path, err)
		return result
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		result.ReadFail = true
		result.Error = fmt.Errorf("cannot read file %s: %w", path, err)
		return result
	}

	doc, err := vision.ParseBytes(data)
	if err != nil {
		result.ReadFail = true
		result.Error = fmt.Errorf("cannot parse %s: %w", path, err)
		return result
	}
	result.Skipped = doc.Skipped

	res, err := ld.LoadDocument(ctx, doc)
	if err != nil {
		result.Error = fmt.Errorf("cannot store %s: %w", path, err)
		return result
	}

	logging.DebugLog("document processed", "path", path, "image_id", res.ImageID, "rows", res.Total())
	result.Rows = res.Total()
	result.Success = true
	return result
}
