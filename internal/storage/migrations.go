package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					official_name TEXT,
					type TEXT NOT NULL,
					subtype TEXT,
					institution_name TEXT,
					mask TEXT,
					balance REAL NOT NULL DEFAULT 0,
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					account_id TEXT NOT NULL,
					date TEXT NOT NULL,
					posted_at TEXT,
					name TEXT NOT NULL,
					merchant_name TEXT,
					type TEXT,
					amount REAL NOT NULL,
					expense_category TEXT,
					primary_category TEXT,
					detailed_category TEXT,
					income_type TEXT,
					ticker TEXT,
					quantity REAL,
					is_expense INTEGER NOT NULL DEFAULT 0,
					is_income INTEGER NOT NULL DEFAULT 0,
					is_pending INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_merchant ON transactions(merchant_name)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add holdings and net worth snapshots",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS holdings (
					account_id TEXT NOT NULL,
					security_key TEXT NOT NULL,
					as_of TEXT NOT NULL,
					security_id TEXT,
					name TEXT,
					ticker TEXT,
					security_type TEXT,
					quantity REAL NOT NULL DEFAULT 0,
					price REAL NOT NULL DEFAULT 0,
					value REAL NOT NULL DEFAULT 0,
					cost_basis REAL NOT NULL DEFAULT 0,
					PRIMARY KEY (account_id, security_key, as_of)
				)`,
				`CREATE INDEX idx_holdings_as_of ON holdings(account_id, as_of)`,

				`CREATE TABLE IF NOT EXISTS net_worth_snapshots (
					date TEXT PRIMARY KEY,
					total_assets REAL NOT NULL,
					total_liabilities REAL NOT NULL,
					net_worth REAL NOT NULL,
					investment_value REAL NOT NULL DEFAULT 0,
					cash_value REAL NOT NULL DEFAULT 0,
					account_count INTEGER NOT NULL DEFAULT 0
				)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index transaction filters used by queries",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_expense_date ON transactions(is_expense, date)`,
			)
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
