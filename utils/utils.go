package utils

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Default layout below the data directory
const (
	DefaultDataDir  = "data"
	JSONSubdir      = "json"
	DatabaseName    = "sqlite.db"
	DefaultLogFile  = "visiondb.log"
	NullPlaceholder = "NULL"
)

// GetDefaultJSONDir returns the JSON directory inside dataDir
func GetDefaultJSONDir(dataDir string) string {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return filepath.Join(dataDir, JSONSubdir)
}

// GetDefaultDatabasePath returns the default path for the database file inside dataDir
func GetDefaultDatabasePath(dataDir string) string {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return filepath.Join(dataDir, DatabaseName)
}

// FormatValue renders one scanned column value for a report line
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return NullPlaceholder
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// FormatRow joins the values of one result row with tabs
func FormatRow(values []any) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = FormatValue(v)
	}
	return strings.Join(fields, "\t")
}

// ParseQueryNumbers parses a comma separated list such as "0,3,5"
func ParseQueryNumbers(list string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid query number '%s'", part)
		}
		out = append(out, n)
	}
	return out, nil
}
