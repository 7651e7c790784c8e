package migration

import (
	"fmt"
	"regexp"
	"strconv"
)

// Migration represents a single versioned migration script loaded from disk.
type Migration struct {
	Version     uint64 // 7 for "V7__add_index.sql"
	Description string // "add_index", taken from the filename
	Script      string // base name, the join key against the ledger
	Checksum    string // content fingerprint, rendering depends on the policy
	Body        string // raw SQL
}

// filenamePattern matches migration files named V{version}__{description}.sql,
// e.g. V1__baseline.sql. Case-sensitive.
var filenamePattern = regexp.MustCompile( //nolint:gochecknoglobals // compiled once, used by ParseFilename
	`^V(\d+)__(\w+)\.sql$`,
)

// ParseFilename extracts version and description from a migration file's
// base name. Returns ErrMalformedFilename when the name does not match the
// V{digits}__{word}.sql pattern.
func ParseFilename(name string) (Migration, error) {
	matches := filenamePattern.FindStringSubmatch(name)
	if matches == nil {
		return Migration{}, fmt.Errorf("%w: %s", ErrMalformedFilename, name)
	}

	version, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil {
		return Migration{}, fmt.Errorf("%w: %s: %w", ErrMalformedFilename, name, err)
	}

	return Migration{
		Version:     version,
		Description: matches[2],
		Script:      name,
	}, nil
}
