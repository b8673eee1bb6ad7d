package cli

import (
	"context"
	"errors"

	"visiondb/config"
	"visiondb/database"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitPanic        = 3
	ExitConfigError  = 10
	ExitSchemaError  = 11
	ExitConsistency  = 12
	ExitInterrupted  = 130
)

// ExitCodeForError returns the exit code for an error returned by Execute.
// Unclassified errors map to ExitGeneralError.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, database.ErrSchema):
		return ExitSchemaError
	case errors.Is(err, database.ErrConsistency):
		return ExitConsistency
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	return ExitGeneralError
}
