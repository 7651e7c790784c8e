package reconcile_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhan042/migledger/internal/history"
	"github.com/akhan042/migledger/internal/migration"
	"github.com/akhan042/migledger/internal/reconcile"
)

func disk(version uint64, checksum string) migration.Migration {
	return migration.Migration{
		Version:     version,
		Description: "m",
		Script:      fmt.Sprintf("V%d__m.sql", version),
		Checksum:    checksum,
		Body:        "SELECT 1;",
	}
}

func ledger(rank int, version uint64, checksum string) history.Entry {
	return history.Entry{
		InstalledRank: rank,
		Version:       version,
		Description:   "m",
		Script:        fmt.Sprintf("V%d__m.sql", version),
		Checksum:      checksum,
		Success:       true,
	}
}

func TestPlan_emptyLedger_allPending(t *testing.T) {
	t.Parallel()

	pending, err := reconcile.Plan(
		[]migration.Migration{disk(1, "a"), disk(2, "b"), disk(3, "c")},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	assert.EqualValues(t, 1, pending[0].Version)
	assert.EqualValues(t, 2, pending[1].Version)
	assert.EqualValues(t, 3, pending[2].Version)
}

func TestPlan_fullyApplied_nothingPending(t *testing.T) {
	t.Parallel()

	pending, err := reconcile.Plan(
		[]migration.Migration{disk(1, "a"), disk(2, "b")},
		[]history.Entry{ledger(1, 1, "a"), ledger(2, 2, "b")},
	)
	require.NoError(t, err)
	assert.Empty(t, pending, "second run after full apply is a no-op")
}

func TestPlan_suffixPending(t *testing.T) {
	t.Parallel()

	pending, err := reconcile.Plan(
		[]migration.Migration{disk(1, "a"), disk(2, "b"), disk(3, "c"), disk(4, "d")},
		[]history.Entry{ledger(1, 1, "a"), ledger(2, 2, "b")},
	)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	assert.EqualValues(t, 3, pending[0].Version)
	assert.EqualValues(t, 4, pending[1].Version)
}

func TestPlan_checksumDrift_isFatal(t *testing.T) {
	t.Parallel()

	pending, err := reconcile.Plan(
		[]migration.Migration{disk(1, "edited"), disk(2, "b")},
		[]history.Entry{ledger(1, 1, "original")},
	)
	require.Error(t, err)
	assert.Nil(t, pending, "nothing is scheduled when the ledger diverges")

	var mismatch *reconcile.ChecksumMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "V1__m.sql", mismatch.Script)
	assert.Equal(t, "original", mismatch.Stored)
	assert.Equal(t, "edited", mismatch.Computed)
}

func TestPlan_duplicateVersions_isFatalPreFlight(t *testing.T) {
	t.Parallel()

	a := disk(7, "x")
	a.Script = "V7__a.sql"
	b := disk(7, "y")
	b.Script = "V7__b.sql"

	pending, err := reconcile.Plan(
		[]migration.Migration{disk(1, "a"), a, b},
		[]history.Entry{ledger(1, 1, "a")},
	)
	require.Error(t, err)
	assert.Nil(t, pending, "no partial subset of a duplicated batch runs")

	var dup *reconcile.DuplicateMigrationError
	require.ErrorAs(t, err, &dup)
	assert.ElementsMatch(t, []string{"V7__a.sql", "V7__b.sql"}, dup.Scripts)
}

func TestPlan_outOfOrderDiskVersion_isFatal(t *testing.T) {
	t.Parallel()

	// V3 and V5 applied; V4 appears on disk afterwards. Re-queuing it would
	// insert below the ledger's high-water mark, so the plan refuses.
	pending, err := reconcile.Plan(
		[]migration.Migration{disk(3, "a"), disk(4, "new"), disk(5, "b")},
		[]history.Entry{ledger(1, 3, "a"), ledger(2, 5, "b")},
	)

	require.Error(t, err)
	assert.Nil(t, pending)

	var ooo *reconcile.OutOfOrderError
	require.ErrorAs(t, err, &ooo)
	assert.Equal(t, "V4__m.sql", ooo.Script)
	assert.EqualValues(t, 4, ooo.Version)
	assert.EqualValues(t, 5, ooo.LedgerVersion)
}

func TestPlan_emptyDisk_nothingPending(t *testing.T) {
	t.Parallel()

	pending, err := reconcile.Plan(nil, []history.Entry{ledger(1, 1, "a")})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPlan_pendingPreservesOrderAndContent(t *testing.T) {
	t.Parallel()

	d := disk(9, "zz")
	d.Body = "CREATE TABLE zz (id INT);"

	pending, err := reconcile.Plan([]migration.Migration{d}, nil)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	assert.Equal(t, d, pending[0], "descriptors pass through untouched")
}

func TestPlan_idempotentAfterApply(t *testing.T) {
	t.Parallel()

	all := []migration.Migration{disk(1, "a"), disk(2, "b"), disk(3, "c")}

	first, err := reconcile.Plan(all, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// Simulate the applier recording every pending migration.
	applied := make([]history.Entry, len(first))
	for i, m := range first {
		applied[i] = ledger(i+1, m.Version, m.Checksum)
	}

	second, err := reconcile.Plan(all, applied)
	require.NoError(t, err)
	assert.Empty(t, second, "immediate re-run schedules nothing")
}
