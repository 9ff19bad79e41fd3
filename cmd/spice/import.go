package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/spice-ask/internal/cli"
	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/config"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import accounts and transactions from OFX or QFX (Quicken) files exported
from your bank. Transactions already in the database are skipped.

Examples:
  # Import single file
  spice import ~/Downloads/chase_jan_2024.qfx

  # Import all QFX files in a directory
  spice import "~/Downloads/*.qfx"

  # Import from multiple directories
  spice import ~/Downloads/Chase/*.qfx ~/Downloads/Ally/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

// importStore is the write surface an import needs.
type importStore interface {
	SaveAccount(ctx context.Context, account *model.Account) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetLatestTransactionDate(ctx context.Context) (time.Time, error)
}

type importOptions struct {
	DryRun   bool
	Progress io.Writer
}

// importSummary describes what an import found and stored.
type importSummary struct {
	Start        time.Time
	End          time.Time
	// Latest is the newest transaction date in the database once the
	// import is done. Zero when the database holds no transactions.
	Latest       time.Time
	Files        int
	FailedFiles  int
	Accounts     int
	Parsed       int
	Duplicates   int
	Imported     int
	Transactions []model.Transaction
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(out, "Import interrupted!", "Re-run the import; transactions already saved are skipped.")
	ctx := handler.HandleInterrupts(cmd.Context())

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	slog.Info("🌶️  Importing OFX files...",
		"file_count", len(files),
		"dry_run", dryRun)

	summary, err := importFiles(ctx, store, files, importOptions{DryRun: dryRun, Progress: cmd.ErrOrStderr()})
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}

	printImportSummary(out, summary, dryRun)
	return nil
}

// expandFiles resolves glob patterns. A pattern that matches nothing is
// kept when it names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", common.ErrNoTransactions)
	}
	return files, nil
}

// importFiles parses every file and stores the result. Files that fail to
// parse are logged and skipped. Transactions are deduplicated by hash, both
// across files and against the database.
func importFiles(ctx context.Context, store importStore, files []string, opts importOptions) (*importSummary, error) {
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := newImportProgressBar(progress, len(files))

	parser := ofx.NewParser()
	summary := &importSummary{Files: len(files)}
	accounts := make(map[string]model.Account)
	var accountOrder []string
	seen := make(map[string]bool)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stmt, err := parseFile(ctx, parser, path)
		if err != nil {
			common.LogError(err, "Failed to import file", common.Fields{"file": path})
			summary.FailedFiles++
		} else {
			for _, acct := range stmt.Accounts {
				if _, ok := accounts[acct.ID]; !ok {
					accountOrder = append(accountOrder, acct.ID)
				}
				accounts[acct.ID] = acct
			}
			for _, tx := range stmt.Transactions {
				summary.Parsed++
				if seen[tx.Hash] {
					summary.Duplicates++
					continue
				}
				seen[tx.Hash] = true
				summary.Transactions = append(summary.Transactions, tx)
				summary.extendRange(tx.Date)
			}
		}

		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	summary.Accounts = len(accounts)

	if len(summary.Transactions) == 0 && len(accounts) == 0 {
		return nil, common.NewUserError("No transactions found in any file", common.ErrNoTransactions)
	}
	if opts.DryRun {
		return summary.withLatest(ctx, store)
	}

	for _, id := range accountOrder {
		acct := accounts[id]
		if err := common.WithRetry(ctx, func() error {
			return store.SaveAccount(ctx, &acct)
		}, common.DefaultRetryOptions()); err != nil {
			return nil, fmt.Errorf("failed to save account %s: %w", id, err)
		}
	}

	if len(summary.Transactions) == 0 {
		return summary.withLatest(ctx, store)
	}

	var inserted int
	err := common.WithRetry(ctx, func() error {
		n, err := store.SaveTransactions(ctx, summary.Transactions)
		inserted = n
		return err
	}, common.DefaultRetryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to save transactions: %w", err)
	}

	summary.Imported = inserted
	summary.Duplicates += len(summary.Transactions) - inserted
	return summary.withLatest(ctx, store)
}

func (s *importSummary) withLatest(ctx context.Context, store importStore) (*importSummary, error) {
	latest, err := store.GetLatestTransactionDate(ctx)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read latest transaction date: %w", err)
	}
	s.Latest = latest
	return s, nil
}

func parseFile(ctx context.Context, parser *ofx.Parser, path string) (*ofx.Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stmt, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(stmt.Transactions) == 0 {
		slog.Warn("No transactions found in file", "file", filepath.Base(path))
	}
	return stmt, nil
}

func newImportProgressBar(w io.Writer, files int) *progressbar.ProgressBar {
	return progressbar.NewOptions(files,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reading statements...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

func (s *importSummary) extendRange(date time.Time) {
	if s.Start.IsZero() || date.Before(s.Start) {
		s.Start = date
	}
	if date.After(s.End) {
		s.End = date
	}
}

func printImportSummary(w io.Writer, s *importSummary, dryRun bool) {
	unique := len(s.Transactions)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, cli.FormatTitle("📁 Import summary"))
	_, _ = fmt.Fprintf(w, "Files:        %d (%d failed)\n", s.Files, s.FailedFiles)
	_, _ = fmt.Fprintf(w, "Accounts:     %d\n", s.Accounts)
	_, _ = fmt.Fprintf(w, "Transactions: %d parsed, %d unique\n", s.Parsed, unique)
	if unique > 0 {
		_, _ = fmt.Fprintf(w, "Date range:   %s to %s\n", s.Start.Format(time.DateOnly), s.End.Format(time.DateOnly))
	}
	if !s.Latest.IsZero() {
		_, _ = fmt.Fprintf(w, "Latest saved: %s\n", s.Latest.Format(time.DateOnly))
	}

	switch {
	case dryRun:
		_, _ = fmt.Fprintln(w, cli.FormatWarning("Dry run - nothing was saved"))
	case s.Imported == 0:
		_, _ = fmt.Fprintln(w, cli.FormatInfo("Everything was already imported"))
	default:
		_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d duplicates skipped)", s.Imported, s.Duplicates)))
	}
}
