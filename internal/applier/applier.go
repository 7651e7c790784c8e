package applier

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akhan042/migledger/internal/history"
	"github.com/akhan042/migledger/internal/migration"
	"github.com/akhan042/migledger/internal/parser"
)

// DefaultInstalledBy is recorded in the ledger's installed_by column unless
// overridden via WithInstalledBy.
const DefaultInstalledBy = "migledger"

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ProgressEvent is emitted by the applier for each migration processed.
type ProgressEvent struct {
	Migration *migration.Migration
	Status    string
	Duration  time.Duration
	Error     error
}

// Ledger abstracts the ledger append for testability. Append runs inside the
// migration's own transaction, so a rollback erases the row with the effects.
type Ledger interface {
	Append(ctx context.Context, tx pgx.Tx, e history.Entry) error
}

// txFunc runs fn inside a transaction that commits on nil and rolls back on
// error. Injectable so unit tests can run without a database.
type txFunc func(ctx context.Context, fn func(tx pgx.Tx) error) error

// Applier executes pending migrations one at a time, each inside its own
// transaction, recording a ledger row as part of the same transaction. The
// run halts on the first failure; earlier commits stand.
type Applier struct {
	pool        *pgxpool.Pool
	ledger      Ledger
	installedBy string
	delimiter   string
	wholeBody   bool
	lockTimeout time.Duration
	stmtTimeout time.Duration
	onProgress  func(ProgressEvent)
	runTx       txFunc
}

// Option configures an Applier.
type Option func(*Applier)

// WithInstalledBy sets the agent identity recorded in ledger rows.
func WithInstalledBy(name string) Option {
	return func(a *Applier) {
		if name != "" {
			a.installedBy = name
		}
	}
}

// WithDelimiter sets the statement delimiter used to split script bodies.
func WithDelimiter(d string) Option {
	return func(a *Applier) {
		if d != "" {
			a.delimiter = d
		}
	}
}

// WithWholeBody executes each script body as a single statement instead of
// splitting on the delimiter.
func WithWholeBody(b bool) Option {
	return func(a *Applier) { a.wholeBody = b }
}

// WithLockTimeout sets the per-transaction lock_timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(a *Applier) { a.lockTimeout = d }
}

// WithStatementTimeout sets the per-transaction statement_timeout.
func WithStatementTimeout(d time.Duration) Option {
	return func(a *Applier) { a.stmtTimeout = d }
}

// WithProgressCallback sets a function called for each migration processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(a *Applier) { a.onProgress = fn }
}

// New creates an Applier with the given pool, ledger, and options.
func New(pool *pgxpool.Pool, ledger Ledger, opts ...Option) *Applier {
	a := &Applier{
		pool:        pool,
		ledger:      ledger,
		installedBy: DefaultInstalledBy,
		delimiter:   parser.DefaultDelimiter,
	}

	for _, opt := range opts {
		opt(a)
	}

	// Default set after options so internal tests can substitute a fake
	// transaction runner.
	if a.runTx == nil {
		a.runTx = func(ctx context.Context, fn func(tx pgx.Tx) error) error {
			return ExecInTransaction(ctx, a.pool, fn)
		}
	}

	return a
}

// Apply executes pending migrations strictly in the given order and returns
// the descriptors applied during this call. startRank is the installed_rank
// for the first migration; each success increments it. If migration k fails,
// migrations before k remain committed and recorded, k and everything after
// are neither applied nor recorded.
func (a *Applier) Apply(ctx context.Context, pending []migration.Migration, startRank int) ([]migration.Migration, error) {
	applied := make([]migration.Migration, 0, len(pending))
	rank := startRank

	for i := range pending {
		m := &pending[i]

		a.fireProgress(ProgressEvent{Migration: m, Status: StatusStarting})

		start := time.Now()
		err := a.applyOne(ctx, m, rank, start)
		duration := time.Since(start)

		if err != nil {
			a.fireProgress(ProgressEvent{
				Migration: m,
				Status:    StatusFailed,
				Duration:  duration,
				Error:     err,
			})

			return applied, fmt.Errorf("applying %s: %w", m.Script, err)
		}

		a.fireProgress(ProgressEvent{
			Migration: m,
			Status:    StatusCompleted,
			Duration:  duration,
		})

		applied = append(applied, *m)
		rank++
	}

	return applied, nil
}

// applyOne runs a single migration's statements and its ledger append inside
// one transaction.
func (a *Applier) applyOne(ctx context.Context, m *migration.Migration, rank int, start time.Time) error {
	statements := a.statements(m.Body)

	return a.runTx(ctx, func(tx pgx.Tx) error {
		if a.lockTimeout > 0 {
			if err := SetLockTimeout(ctx, tx, a.lockTimeout); err != nil {
				return err
			}
		}

		if a.stmtTimeout > 0 {
			if err := SetStatementTimeout(ctx, tx, a.stmtTimeout); err != nil {
				return err
			}
		}

		for idx, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return &ExecError{Script: m.Script, Statement: idx + 1, Err: err}
			}
		}

		millis := time.Since(start).Milliseconds()
		if millis < 1 {
			millis = 1
		}

		return a.ledger.Append(ctx, tx, history.Entry{
			InstalledRank:   rank,
			Version:         m.Version,
			Description:     m.Description,
			Script:          m.Script,
			Checksum:        m.Checksum,
			InstalledBy:     a.installedBy,
			ExecutionMillis: millis,
			Success:         true,
		})
	})
}

// statements returns the executable statements of a script body per the
// configured execution mode.
func (a *Applier) statements(body string) []string {
	if a.wholeBody {
		return parser.SplitStatements(body, "")
	}

	return parser.SplitStatements(body, a.delimiter)
}

func (a *Applier) fireProgress(event ProgressEvent) {
	if a.onProgress != nil {
		a.onProgress(event)
	}
}
