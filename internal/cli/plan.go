package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akhan042/migledger/internal/parser"
)

var planCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "plan",
	Short: "Show what apply would do, without executing",
	Long: `Reconcile the migrations directory against the ledger and list the
pending migrations in execution order, running each through the PostgreSQL
parser. Nothing is executed.`,
	RunE: runPlan,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()
	ctx := commandContext(cmd)

	pool, store, err := openStore(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer pool.Close()

	pending, _, err := planPending(ctx, cfg, store)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Fprintln(out, "Nothing to apply: ledger is up to date.")
		return nil
	}

	fmt.Fprintf(out, "Would apply %d migration(s), in order:\n", len(pending))

	var invalid int

	for _, m := range pending {
		if err := parser.Validate(m.Script, m.Body); err != nil {
			fmt.Fprintf(out, "  %s  SYNTAX ERROR: %v\n", m.Script, err)
			invalid++

			continue
		}

		fmt.Fprintf(out, "  %s\n", m.Script)
	}

	if invalid > 0 {
		return fmt.Errorf("%d pending migration(s) failed syntax validation", invalid)
	}

	return nil
}
