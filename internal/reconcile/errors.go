package reconcile

import (
	"fmt"
	"strings"
)

// ChecksumMismatchError reports an already-applied migration whose on-disk
// content no longer matches the fingerprint recorded at apply time.
type ChecksumMismatchError struct {
	Script   string
	Stored   string
	Computed string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: ledger has %s, disk has %s",
		e.Script, e.Stored, e.Computed)
}

// DuplicateMigrationError reports two or more pending migrations sharing a
// version number. Carries every offending script name.
type DuplicateMigrationError struct {
	Scripts []string
}

func (e *DuplicateMigrationError) Error() string {
	return fmt.Sprintf("duplicate migration versions among pending scripts: %s",
		strings.Join(e.Scripts, ", "))
}

// OutOfOrderError reports a disk migration whose version is lower than a
// ledger entry already consumed by the merge. Re-queuing it would attempt a
// second application below the ledger's high-water mark, so it is rejected.
type OutOfOrderError struct {
	Script        string
	Version       uint64
	LedgerVersion uint64
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("out-of-order migration %s: version %d is below already-applied version %d",
		e.Script, e.Version, e.LedgerVersion)
}
