package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errResetNotConfirmed is returned when reset is invoked without --confirm.
var errResetNotConfirmed = errors.New("reset requires --confirm: it erases the migration ledger")

var resetCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "reset",
	Short: "Drop and recreate the migration ledger table",
	Long: `Drop and recreate the ledger table, erasing all bookkeeping. Tables
and data created by previously-applied migrations are left untouched, and no
migration is re-run or un-applied. The next apply will treat every migration
on disk as pending.`,
	RunE: runReset,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	resetCmd.Flags().Bool("confirm", false, "confirm erasing the ledger")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	confirm, _ := cmd.Flags().GetBool("confirm")
	if !confirm {
		return errResetNotConfirmed
	}

	cfg := AppConfig
	out := cmd.OutOrStdout()
	ctx := commandContext(cmd)

	pool, store, err := openStore(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.Reset(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "Ledger table %s dropped and recreated.\n", store.Table())

	return nil
}
