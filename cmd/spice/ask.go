package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/spice-ask/internal/analytics"
	"github.com/Veraticus/spice-ask/internal/cli"
	"github.com/Veraticus/spice-ask/internal/config"
	"github.com/Veraticus/spice-ask/internal/confidence"
	"github.com/Veraticus/spice-ask/internal/dispatch"
	"github.com/Veraticus/spice-ask/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about your finances",
		Long: `Answer a plain-English question about your transactions, accounts and
investments. With no question, start an interactive session.

Examples:
  spice ask "what's my net worth"
  spice ask how much did I spend on beer last month
  spice ask "lunch this year" --format json
  spice ask`,
		RunE: runAsk,
	}

	cmd.Flags().StringP("format", "f", config.FormatTable, "output format (table, json)")
	_ = viper.BindPFlag("ask.format", cmd.Flags().Lookup("format"))

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	d, err := newDispatcher(store, cfg, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	answer := func(ctx context.Context, question string) error {
		return answerQuestion(ctx, d, out, cfg.Ask.Format, question)
	}

	if len(args) == 0 {
		return cli.NewSession(os.Stdin, out, answer).Run(ctx)
	}
	return answer(ctx, strings.Join(args, " "))
}

// newDispatcher wires the dispatcher to a store. A nil now uses time.Now.
func newDispatcher(store *storage.SQLiteStorage, cfg config.Config, now func() time.Time) (*dispatch.Dispatcher, error) {
	return dispatch.New(dispatch.Deps{
		Transactions: store,
		Accounts:     store,
		Analytics:    analytics.New(store, now),
		Scorer:       confidence.NewScorer(confidence.DefaultMerchantClasses(), cfg.Confidence),
		Now:          now,
	})
}

// answerQuestion dispatches one question and prints the response.
func answerQuestion(ctx context.Context, d *dispatch.Dispatcher, w io.Writer, format, question string) error {
	resp, err := d.Ask(ctx, question)
	if err != nil {
		return err
	}

	if format == config.FormatJSON {
		return cli.RenderJSON(w, resp)
	}
	return cli.NewRenderer(w).Render(resp)
}
