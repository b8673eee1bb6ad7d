package signalhandler

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"visiondb/logging"
)

// SetupHandler returns a context that is cancelled on SIGINT or SIGTERM.
// Loading stops at the next document boundary, so every committed document
// stays intact. A second signal exits immediately. The returned stop function
// releases the handler.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	// Create a channel to receive OS signals
	sigChan := make(chan os.Signal, 2)

	// Register for specific signals
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logging.LogWarning("interrupted, stopping after the current document", "signal", sig.String())
			cancel()
		case <-done:
			return
		}
		select {
		case sig := <-sigChan:
			logging.LogError("second signal, exiting", "signal", sig.String())
			os.Exit(130)
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			cancel()
		})
	}
}
