package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/akhan042/migledger/internal/applier"
	"github.com/akhan042/migledger/internal/config"
	"github.com/akhan042/migledger/internal/database"
	"github.com/akhan042/migledger/internal/history"
	"github.com/akhan042/migledger/internal/migration"
	"github.com/akhan042/migledger/internal/parser"
	"github.com/akhan042/migledger/internal/reconcile"
)

// errDatabaseURLRequired is returned when no database URL is configured.
var errDatabaseURLRequired = errors.New(
	"database URL is required (set --database-url, MIGLEDGER_DATABASE_URL, or database_url in config)",
)

var applyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "apply",
	Short: "Apply pending migrations",
	Long: `Reconcile the migrations directory against the ledger and apply every
pending migration in ascending version order, each inside its own transaction.
The run halts on the first failure; earlier migrations stay committed.`,
	RunE: runApply,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	applyCmd.Flags().Bool("no-verify", false, "skip pre-flight SQL syntax validation")
	applyCmd.Flags().Duration("lock-timeout", 0, "override lock timeout (e.g., 10s, 1m)")
	applyCmd.Flags().Duration("statement-timeout", 0, "override statement timeout (e.g., 30s, 5m)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	noVerify, _ := cmd.Flags().GetBool("no-verify")

	lockTimeout := cfg.LockTimeout
	if cmd.Flags().Changed("lock-timeout") {
		lockTimeout, _ = cmd.Flags().GetDuration("lock-timeout")
	}

	stmtTimeout := cfg.StatementTimeout
	if cmd.Flags().Changed("statement-timeout") {
		stmtTimeout, _ = cmd.Flags().GetDuration("statement-timeout")
	}

	ctx := commandContext(cmd)

	pool, store, err := openStore(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer pool.Close()

	pending, applied, err := planPending(ctx, cfg, store)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Fprintln(out, "Ledger is up to date: no pending migrations.")
		return nil
	}

	if !noVerify {
		if err := verifyPending(pending); err != nil {
			return fmt.Errorf("pre-flight validation failed: %w", err)
		}
	}

	apl := applier.New(pool, store,
		applier.WithInstalledBy(cfg.InstalledBy),
		applier.WithDelimiter(cfg.Delimiter),
		applier.WithWholeBody(cfg.WholeBody),
		applier.WithLockTimeout(lockTimeout),
		applier.WithStatementTimeout(stmtTimeout),
		applier.WithProgressCallback(progressPrinter(out)),
	)

	newly, err := apl.Apply(ctx, pending, nextRank(applied))
	if err != nil {
		fmt.Fprintf(out, "\nRun halted: %d of %d migration(s) applied.\n", len(newly), len(pending))
		return err
	}

	fmt.Fprintf(out, "\nApply complete: %d migration(s) applied.\n", len(newly))

	return nil
}

// commandContext returns the command's context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// openStore connects the pool, builds the ledger store, and ensures the
// ledger table exists.
func openStore(ctx context.Context, cfg *config.Config, out io.Writer) (*pgxpool.Pool, *history.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errDatabaseURLRequired
	}

	fmt.Fprintf(out, "Connecting to %s\n", config.RedactURL(cfg.DatabaseURL))

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := history.New(pool, history.WithTable(cfg.LedgerTable))

	if err := store.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return pool, store, nil
}

// planPending loads and sorts the disk migrations, reads the ledger, and
// reconciles the two. Returns the pending sequence and the raw ledger.
func planPending(ctx context.Context, cfg *config.Config, store *history.Store) (
	[]migration.Migration, []history.Entry, error,
) {
	policy, err := migration.ParsePolicy(cfg.ChecksumPolicy)
	if err != nil {
		return nil, nil, err
	}

	migrations, err := migration.LoadDir(cfg.MigrationsDir, policy)
	if err != nil {
		return nil, nil, fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := store.ListApplied(ctx)
	if err != nil {
		return nil, nil, err
	}

	pending, err := reconcile.Plan(migration.Sort(migrations), applied)
	if err != nil {
		return nil, nil, err
	}

	return pending, applied, nil
}

// verifyPending runs every pending script through the PostgreSQL parser.
func verifyPending(pending []migration.Migration) error {
	for _, m := range pending {
		if err := parser.Validate(m.Script, m.Body); err != nil {
			return err
		}
	}

	return nil
}

// nextRank returns the installed_rank for the next ledger row.
func nextRank(applied []history.Entry) int {
	if len(applied) == 0 {
		return 1
	}

	return applied[len(applied)-1].InstalledRank + 1
}

// progressPrinter renders applier progress events onto out.
func progressPrinter(out io.Writer) func(applier.ProgressEvent) {
	return func(event applier.ProgressEvent) {
		switch event.Status {
		case applier.StatusStarting:
			fmt.Fprintf(out, "  Applying %s ... ", event.Migration.Script)
		case applier.StatusCompleted:
			fmt.Fprintf(out, "done (%s)\n", event.Duration.Truncate(time.Millisecond))
		case applier.StatusFailed:
			fmt.Fprintf(out, "FAILED\n    Error: %v\n", event.Error)
		}
	}
}
