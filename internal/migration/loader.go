package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadDir scans a directory for migration files and returns them unsorted.
// Files whose names do not match the V{version}__{description}.sql pattern
// are skipped, not errors: discovery filters, it does not fail.
func LoadDir(dir string, policy ChecksumPolicy) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var migrations []Migration

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m, err := ParseFilename(entry.Name())
		if err != nil {
			if errors.Is(err, ErrMalformedFilename) {
				continue
			}

			return nil, err
		}

		path := filepath.Join(dir, entry.Name())

		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading migration file %s: %w", path, err)
		}

		m.Body = string(body)
		m.Checksum = Checksum(policy, m.Body)

		migrations = append(migrations, m)
	}

	return migrations, nil
}
