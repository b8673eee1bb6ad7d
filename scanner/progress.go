package scanner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"visiondb/logging"
)

// ProgressTracker tracks progress of the load operation
type ProgressTracker struct {
	out        io.Writer
	totalFiles int
	processed  int
	loaded     int
	errors     int
	rows       int
	skipped    int
	failures   []FileFailure
	ticker     *time.Ticker
	done       chan struct{}
	stopped    chan struct{}
	mu         sync.Mutex
}

// NewProgressTracker initializes the progress tracker and starts the display
func NewProgressTracker(out io.Writer, totalFiles int, interval time.Duration) *ProgressTracker {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	tracker := &ProgressTracker{
		out:        out,
		totalFiles: totalFiles,
		ticker:     time.NewTicker(interval),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	// Start progress display goroutine
	go tracker.displayProgress()

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	defer close(p.stopped)
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.printLine()
		}
	}
}

func (p *ProgressTracker) printLine() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.errors > 0 {
		fmt.Fprintf(p.out, "\rProgress: %d/%d (Errors: %d)", p.processed, p.totalFiles, p.errors)
	} else {
		fmt.Fprintf(p.out, "\rProgress: %d/%d", p.processed, p.totalFiles)
	}
}

// Record updates the tracker state with the result of one file
func (p *ProgressTracker) Record(result ProcessDocumentResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	if !result.Success {
		p.errors++
		p.failures = append(p.failures, FileFailure{Path: result.Path, Error: result.Error})
		logging.LogDocumentLoaded(result.Path, false, result.Error)
		return
	}

	p.loaded++
	p.rows += result.Rows
	if len(result.Skipped) > 0 {
		p.skipped++
		logging.LogWarning("document has unreadable sections", "path", result.Path, "sections", result.Skipped)
	}
	logging.LogDocumentLoaded(result.Path, true, nil)
}

// Stop ends the progress display and prints the final progress line
func (p *ProgressTracker) Stop() {
	p.ticker.Stop()
	close(p.done)
	<-p.stopped
	p.printLine()
}

// Summary returns the counters collected so far
func (p *ProgressTracker) Summary() ScanSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ScanSummary{
		Found:    p.totalFiles,
		Loaded:   p.loaded,
		Failed:   p.errors,
		Rows:     p.rows,
		Skipped:  p.skipped,
		Failures: append([]FileFailure(nil), p.failures...),
	}
}

// PrintStartupInfo displays information about the scan before starting
func PrintStartupInfo(out io.Writer, totalFiles int, options ScanOptions) {
	fmt.Fprintf(out, "Starting document loading...\nJSON folder: %s\nTotal JSON files to process: %d\n",
		options.JSONDir, totalFiles)

	if options.DebugMode {
		fmt.Fprintf(out, "Debug mode: enabled\n")
		logging.DebugLog("found JSON files", "dir", options.JSONDir, "count", totalFiles)
	}
}

// PrintCompletionStats displays statistics after the scan completes
func PrintCompletionStats(out io.Writer, summary ScanSummary, options ScanOptions) {
	logging.LogInfo("load completed",
		"elapsed", summary.Elapsed,
		"found", summary.Found,
		"loaded", summary.Loaded,
		"failed", summary.Failed,
		"rows", summary.Rows)

	fmt.Fprintln(out, "\nLoading complete.")
	fmt.Fprintf(out, "Loaded %d/%d documents in %v (%d rows added).\n",
		summary.Loaded, summary.Found, summary.Elapsed.Round(time.Millisecond), summary.Rows)

	if summary.Skipped > 0 {
		fmt.Fprintf(out, "%d documents had sections that could not be read.\n", summary.Skipped)
	}

	if summary.Failed > 0 {
		fmt.Fprintf(out, "Encountered %d errors during loading.\n", summary.Failed)
		if options.DebugMode {
			for _, f := range summary.Failures {
				fmt.Fprintf(out, "  %s: %v\n", f.Path, f.Error)
			}
		}
		fmt.Fprintln(out, "Check the log file for details.")
	}
}
