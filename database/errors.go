package database

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema indicates the existing database does not match the expected schema.
	ErrSchema = errors.New("incompatible schema")

	// ErrConsistency indicates a get-or-create insert did not produce a matching row.
	// It is fatal for the document being loaded and is never retried.
	ErrConsistency = errors.New("get-or-create consistency failure")

	// ErrNullKey indicates a nil value was supplied for a natural-key column.
	ErrNullKey = errors.New("nil natural-key value")

	// ErrDescriptor indicates a table descriptor was built or used incorrectly.
	ErrDescriptor = errors.New("invalid table descriptor")
)

// SchemaError describes a table whose existing definition lacks expected columns
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s exists without column(s) %s", e.Table, strings.Join(e.Missing, ", "))
}

// Unwrap lets errors.Is(err, ErrSchema) match
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
