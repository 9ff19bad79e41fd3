package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/spice-ask/internal/analytics"
	"github.com/Veraticus/spice-ask/internal/cli"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/storage"
	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record today's net worth",
		Long: `Compute net worth from current account balances and holdings and store it
as a dated snapshot. Net worth history questions ("net worth this year")
read these snapshots, so run this regularly, for example from cron.`,
		Args: cobra.NoArgs,
		RunE: runSnapshot,
	}

	cmd.Flags().String("date", "", "snapshot date (format: 2006-01-02, default: today)")

	return cmd
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	date, err := snapshotDate(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	snap, err := recordSnapshot(ctx, store, date)
	if err != nil {
		return err
	}

	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func snapshotDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", raw, err)
	}
	return date, nil
}

// recordSnapshot computes net worth as of date and saves it.
func recordSnapshot(ctx context.Context, store *storage.SQLiteStorage, date time.Time) (*model.NetWorthSnapshot, error) {
	snap, err := analytics.New(store, nil).Snapshot(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to compute net worth: %w", err)
	}
	if err := store.SaveNetWorthSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func printSnapshot(w io.Writer, snap *model.NetWorthSnapshot) {
	_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Recorded net worth for %s", snap.Date.Format(time.DateOnly))))
	_, _ = fmt.Fprintf(w, "Net worth:   $%.2f\n", snap.NetWorth)
	_, _ = fmt.Fprintf(w, "Assets:      $%.2f\n", snap.TotalAssets)
	_, _ = fmt.Fprintf(w, "Liabilities: $%.2f\n", snap.TotalLiabilities)
	_, _ = fmt.Fprintf(w, "Accounts:    %d\n", snap.AccountCount)
}
