package history

// createTableSQL is the DDL template for the ledger table; the single %s is
// the sanitized table identifier. The version column is text so both checksum
// policies and arbitrarily large version numbers round-trip losslessly.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    installed_rank INTEGER PRIMARY KEY,
    version        TEXT NOT NULL,
    description    TEXT NOT NULL,
    type           TEXT NOT NULL DEFAULT 'SQL',
    script         TEXT NOT NULL,
    checksum       TEXT NOT NULL,
    installed_by   TEXT NOT NULL,
    installed_on   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    execution_time INTEGER NOT NULL,
    success        BOOLEAN NOT NULL
)`
