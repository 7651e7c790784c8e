package migration

import "sort"

// Sort returns a new slice sorted by Version ascending. Directory listing
// order is never version order; reconciliation requires this sort.
func Sort(migrations []Migration) []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	return sorted
}
