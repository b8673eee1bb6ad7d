package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ID is the set of row id types a table descriptor can return
type ID interface {
	~int64 | ~string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(name string) string {
	return `"` + name + `"`
}

// Table describes a table reachable through GetOrCreate.
//
// Key columns identify a row: lookups match every one of them with plain
// equality. Attribute columns are written when the row is created and are
// never compared. The SQL for both statements is rendered once, when the
// descriptor is built.
type Table[K ID] struct {
	name      string
	keys      []string
	attrs     []string
	selectSQL string
	insertSQL string
}

// NewTable builds a descriptor. Identifiers must be plain SQL names.
func NewTable[K ID](name, idColumn string, keys []string, attrs ...string) (Table[K], error) {
	if len(keys) == 0 {
		return Table[K]{}, fmt.Errorf("%w: table %s has no key columns", ErrDescriptor, name)
	}
	all := append([]string{name, idColumn}, keys...)
	all = append(all, attrs...)
	for _, ident := range all {
		if !identPattern.MatchString(ident) {
			return Table[K]{}, fmt.Errorf("%w: bad identifier %q", ErrDescriptor, ident)
		}
	}

	where := make([]string, len(keys))
	for i, k := range keys {
		where[i] = quoteIdent(k) + " = ?"
	}
	cols := make([]string, 0, len(keys)+len(attrs))
	for _, c := range append(append([]string{}, keys...), attrs...) {
		cols = append(cols, quoteIdent(c))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	return Table[K]{
		name:  name,
		keys:  keys,
		attrs: attrs,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s",
			quoteIdent(idColumn), quoteIdent(name), strings.Join(where, " AND ")),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(name), strings.Join(cols, ", "), placeholders),
	}, nil
}

// MustTable is NewTable for package-level descriptors; it panics on error
func MustTable[K ID](name, idColumn string, keys []string, attrs ...string) Table[K] {
	t, err := NewTable[K](name, idColumn, keys, attrs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name
func (t Table[K]) Name() string {
	return t.name
}

// GetOrCreate returns the id of the row of t whose key columns equal key,
// inserting it (with attrs) first when no such row exists. Calling it again
// with the same key returns the same id.
//
// A nil key value is refused with ErrNullKey: SQL equality never matches
// NULL, so such a lookup could not find the row it had just inserted. If the
// insert trips a constraint or the row still cannot be found afterwards, the
// error wraps ErrConsistency.
func GetOrCreate[K ID](ctx context.Context, q Querier, t Table[K], key []any, attrs ...any) (K, error) {
	var zero K
	if t.selectSQL == "" {
		return zero, fmt.Errorf("%w: uninitialised table descriptor", ErrDescriptor)
	}
	if len(key) != len(t.keys) || len(attrs) > len(t.attrs) {
		return zero, fmt.Errorf("%w: %s wants %d key and up to %d attribute values, got %d and %d",
			ErrDescriptor, t.name, len(t.keys), len(t.attrs), len(key), len(attrs))
	}
	for i, v := range key {
		if v == nil {
			return zero, fmt.Errorf("%w: %s.%s", ErrNullKey, t.name, t.keys[i])
		}
	}

	id, found, err := lookup[K](ctx, q, t, key)
	if err != nil || found {
		return id, err
	}

	values := make([]any, 0, len(t.keys)+len(t.attrs))
	values = append(values, key...)
	values = append(values, attrs...)
	for len(values) < len(t.keys)+len(t.attrs) {
		values = append(values, nil)
	}
	if _, err := q.ExecContext(ctx, t.insertSQL, values...); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return zero, fmt.Errorf("%w: insert into %s %v: %w", ErrConsistency, t.name, key, err)
		}
		return zero, fmt.Errorf("insert into %s: %w", t.name, err)
	}

	id, found, err = lookup[K](ctx, q, t, key)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("%w: no %s row matches %v after insert", ErrConsistency, t.name, key)
	}
	return id, nil
}

func lookup[K ID](ctx context.Context, q Querier, t Table[K], key []any) (K, bool, error) {
	var id K
	err := q.QueryRowContext(ctx, t.selectSQL, key...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return id, false, nil
	case err != nil:
		return id, false, fmt.Errorf("select from %s: %w", t.name, err)
	}
	return id, true, nil
}
