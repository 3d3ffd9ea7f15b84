package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/storage"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List analysis runs stored in a results database",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRuns,
	}

	cmd.Flags().String("db", "", "SQLite results database (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func runRuns(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return common.NewUserError("Could not open the results database", err)
	}
	defer func() { _ = store.Close() }()

	if len(args) == 1 {
		return showRun(cmd, store, args[0])
	}

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return common.NewUserError("Could not list runs", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs stored yet.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-36s  %-19s  %9s  %2s  %5s\n", "RUN", "STARTED", "CUSTOMERS", "K", "RULES")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-19s  %9d  %2d  %5d\n",
			r.RunID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Customers, r.K, r.Rules)
	}
	return nil
}

func showRun(cmd *cobra.Command, store *storage.SQLiteStore, runID string) error {
	detail, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return common.NewUserError("Could not load the run", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (started %s)\n", detail.RunID, detail.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Reference date %s, %d customers, %d transactions, %d categories, $%.2f revenue\n",
		detail.ReferenceDate.Format("2006-01-02"), detail.Customers, detail.Transactions,
		detail.Categories, detail.TotalRevenue)
	fmt.Fprintf(out, "k=%d, %d association rules\n", detail.K, detail.Rules)

	for _, p := range detail.Profiles {
		fmt.Fprintf(out, "  cluster %d: %s, %d customers (%.1f%%)\n", p.ID, p.Archetype, p.Count, p.Percent)
	}
	for _, s := range detail.Strategies {
		fmt.Fprintf(out, "  [%d] %s: %s\n", s.Cluster, s.Type, s.Description)
	}
	return nil
}
