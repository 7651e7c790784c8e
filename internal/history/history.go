package history

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the ledger table name used unless overridden via WithTable.
const DefaultTable = "schema_ledger"

// entryColumns is the column count ListApplied selects; row deserialization
// refuses result sets of any other shape.
const entryColumns = 9

// Entry is one row of the migration ledger. Rows are written exactly once,
// inside the transaction that applied the migration, and never updated.
type Entry struct {
	InstalledRank   int
	Version         uint64
	Description     string
	Script          string
	Checksum        string
	InstalledBy     string
	InstalledAt     time.Time
	ExecutionMillis int64
	Success         bool
}

// Store reads and appends the migration ledger table.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// Option configures a Store.
type Option func(*Store)

// WithTable overrides the ledger table name.
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:  pool,
		table: DefaultTable,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Table returns the configured ledger table name.
func (s *Store) Table() string {
	return s.table
}

// ident returns the quoted table identifier for interpolation into DDL/DML.
func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

// EnsureTable creates the ledger table if it does not exist. Idempotent by
// construction rather than by catching a duplicate-table error.
func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(createTableSQL, s.ident())); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrStoreUnavailable, s.table, err)
	}

	return nil
}

// ListApplied returns every ledger row ordered by installed_rank ascending.
func (s *Store) ListApplied(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT installed_rank, version, description, script, checksum,
		        installed_by, installed_on, execution_time, success
		 FROM %s
		 ORDER BY installed_rank`, s.ident()),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %w", ErrStoreUnavailable, s.table, err)
	}
	defer rows.Close()

	applied, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrStoreUnavailable, s.table, err)
	}

	return applied, nil
}

// scanEntry deserializes one ledger row, validating the result shape before
// touching individual columns.
func scanEntry(row pgx.CollectableRow) (Entry, error) {
	if got := len(row.FieldDescriptions()); got != entryColumns {
		return Entry{}, fmt.Errorf("%w: ledger row has %d columns, want %d",
			ErrCorruptLedger, got, entryColumns)
	}

	var (
		e       Entry
		version string
	)

	if err := row.Scan(&e.InstalledRank, &version, &e.Description, &e.Script,
		&e.Checksum, &e.InstalledBy, &e.InstalledAt, &e.ExecutionMillis, &e.Success); err != nil {
		return Entry{}, fmt.Errorf("scanning ledger row: %w", err)
	}

	v, err := strconv.ParseUint(version, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: non-numeric version %q at rank %d",
			ErrCorruptLedger, version, e.InstalledRank)
	}

	e.Version = v

	return e, nil
}

// Append inserts exactly one ledger row. Called only from inside the
// transaction that executed the migration, so a rollback erases the row
// together with the migration's effects.
func (s *Store) Append(ctx context.Context, tx pgx.Tx, e Entry) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (installed_rank, version, description, type, script,
		                 checksum, installed_by, execution_time, success)
		 VALUES ($1, $2, $3, 'SQL', $4, $5, $6, $7, $8)`, s.ident()),
		e.InstalledRank,
		strconv.FormatUint(e.Version, 10),
		e.Description,
		e.Script,
		e.Checksum,
		e.InstalledBy,
		e.ExecutionMillis,
		e.Success,
	)
	if err != nil {
		return fmt.Errorf("%w: appending rank %d (%s): %w",
			ErrStoreUnavailable, e.InstalledRank, e.Script, err)
	}

	return nil
}

// Reset drops and recreates the ledger table. It erases bookkeeping only:
// tables created by previously-applied migrations are left untouched, and no
// migration is un-applied. Callers gate this behind explicit confirmation.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, s.ident())); err != nil {
		return fmt.Errorf("%w: dropping %s: %w", ErrStoreUnavailable, s.table, err)
	}

	return s.EnsureTable(ctx)
}
