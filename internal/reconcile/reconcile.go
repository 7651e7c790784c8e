// Package reconcile merges the on-disk migration sequence with the persisted
// ledger and decides which migrations still need to run.
package reconcile

import (
	"github.com/akhan042/migledger/internal/history"
	"github.com/akhan042/migledger/internal/migration"
)

// Plan classifies each disk migration against the ledger and returns the
// ordered pending sequence. disk must be sorted by version ascending (see
// migration.Sort); applied is the ledger in installed_rank order, which is
// version-ascending because this same algorithm only ever appends in
// increasing-version order.
//
// Both sequences are consumed with a single forward pass. An already-applied
// migration whose checksum still matches is skipped; a checksum divergence is
// fatal; a disk version that would slot beneath the ledger's remaining
// entries is fatal rather than silently re-queued. All failures abort with
// zero migrations applied.
func Plan(disk []migration.Migration, applied []history.Entry) ([]migration.Migration, error) {
	var pending []migration.Migration

	j := 0

	for _, d := range disk {
		// A disk version below the next unconsumed ledger entry would slot
		// beneath the ledger's high-water mark; skipping past that entry
		// would silently queue d for (re-)application instead.
		if j < len(applied) && d.Version < applied[j].Version {
			return nil, &OutOfOrderError{
				Script:        d.Script,
				Version:       d.Version,
				LedgerVersion: applied[j].Version,
			}
		}

		for j < len(applied) && applied[j].Version != d.Version {
			j++
		}

		if j >= len(applied) {
			// Never recorded as applied.
			pending = append(pending, d)
			continue
		}

		if applied[j].Checksum != d.Checksum {
			return nil, &ChecksumMismatchError{
				Script:   d.Script,
				Stored:   applied[j].Checksum,
				Computed: d.Checksum,
			}
		}

		j++
	}

	if err := checkDuplicates(pending); err != nil {
		return nil, err
	}

	return pending, nil
}

// checkDuplicates fails the whole plan if any version number appears more
// than once among the pending migrations. Pre-flight: no partial subset of a
// batch with internal duplicates ever runs.
func checkDuplicates(pending []migration.Migration) error {
	byVersion := make(map[uint64][]string)

	for _, m := range pending {
		byVersion[m.Version] = append(byVersion[m.Version], m.Script)
	}

	var offending []string

	for _, m := range pending {
		if len(byVersion[m.Version]) > 1 {
			offending = append(offending, m.Script)
		}
	}

	if len(offending) > 0 {
		return &DuplicateMigrationError{Scripts: offending}
	}

	return nil
}
