package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"visiondb/cli"
)

func main() {
	// Recover from panics so the exit code stays meaningful
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(cli.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
