package history

import "errors"

// ErrStoreUnavailable indicates the ledger table could not be read, created,
// or written (connectivity, privileges). Surfaced immediately, never retried.
var ErrStoreUnavailable = errors.New("migration ledger unavailable")

// ErrCorruptLedger indicates a ledger row did not deserialize into an Entry.
var ErrCorruptLedger = errors.New("corrupt migration ledger row")
