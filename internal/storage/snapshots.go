package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/model"
)

const snapshotColumns = `date, total_assets, total_liabilities, net_worth, investment_value, cash_value, account_count`

// SaveNetWorthSnapshot stores a snapshot, replacing any existing one for
// the same date.
func (s *SQLiteStorage) SaveNetWorthSnapshot(ctx context.Context, snap *model.NetWorthSnapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}
	if snap.Date.IsZero() {
		return fmt.Errorf("%w: snapshot date", ErrEmptyString)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO net_worth_snapshots (`+snapshotColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			snap.Date.Format(dateLayout),
			snap.TotalAssets,
			snap.TotalLiabilities,
			snap.NetWorth,
			snap.InvestmentValue,
			snap.CashValue,
			snap.AccountCount,
		)
		if err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return nil
	})
}

// GetNetWorthSnapshot returns the snapshot for date, or common.ErrNotFound.
func (s *SQLiteStorage) GetNetWorthSnapshot(ctx context.Context, date time.Time) (*model.NetWorthSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+snapshotColumns+" FROM net_worth_snapshots WHERE date = ?", date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, common.ErrNotFound
	}
	return &snaps[0], nil
}

// GetNetWorthSnapshots returns snapshots within [start, end], oldest first.
func (s *SQLiteStorage) GetNetWorthSnapshots(ctx context.Context, start, end time.Time) ([]model.NetWorthSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+` FROM net_worth_snapshots
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]model.NetWorthSnapshot, error) {
	var snaps []model.NetWorthSnapshot
	for rows.Next() {
		var (
			snap model.NetWorthSnapshot
			date string
		)
		if err := rows.Scan(&date, &snap.TotalAssets, &snap.TotalLiabilities, &snap.NetWorth,
			&snap.InvestmentValue, &snap.CashValue, &snap.AccountCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		var err error
		if snap.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snaps, nil
}
