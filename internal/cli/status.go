package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show applied and pending migrations",
	Long: `Display the ledger's applied migrations in application order followed
by the migrations still pending on disk.`,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()
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

	if len(applied) == 0 {
		fmt.Fprintln(out, "No migrations applied yet.")
	} else {
		w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tVERSION\tSCRIPT\tINSTALLED ON\tMILLIS")

		for _, e := range applied {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\n",
				e.InstalledRank, e.Version, e.Script,
				e.InstalledAt.Format("2006-01-02 15:04:05"), e.ExecutionMillis)
		}

		w.Flush() //nolint:errcheck // best-effort output formatting
	}

	if len(pending) == 0 {
		fmt.Fprintln(out, "\nPending: none.")
		return nil
	}

	fmt.Fprintf(out, "\nPending (%d):\n", len(pending))

	for _, m := range pending {
		fmt.Fprintf(out, "  %s\n", m.Script)
	}

	return nil
}
