package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-ask/internal/model"
)

// SaveHoldings stores a batch of holdings, replacing any existing row for
// the same account, security and date.
func (s *SQLiteStorage) SaveHoldings(ctx context.Context, holdings []model.Holding) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(holdings) == 0 {
		return fmt.Errorf("%w: holdings", ErrEmptySlice)
	}
	for i := range holdings {
		if err := validateHolding(&holdings[i]); err != nil {
			return fmt.Errorf("holding at index %d: %w", i, err)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO holdings (
				account_id, security_key, as_of, security_id, name, ticker,
				security_type, quantity, price, value, cost_basis
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, h := range holdings {
			_, err := stmt.ExecContext(ctx,
				h.AccountID,
				h.Key(),
				h.AsOf.Format(dateLayout),
				h.SecurityID,
				h.Name,
				h.Ticker,
				h.SecurityType,
				h.Quantity,
				h.Price,
				h.Value,
				h.CostBasis,
			)
			if err != nil {
				return fmt.Errorf("failed to save holding %s/%s: %w", h.AccountID, h.Key(), err)
			}
		}
		return nil
	})
}

// LatestHoldings returns, for each account, the holdings from its most
// recent snapshot on or before asOf, sorted by value descending. An empty
// accountID means every account.
func (s *SQLiteStorage) LatestHoldings(ctx context.Context, asOf time.Time, accountID string) ([]model.Holding, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT h.account_id, h.as_of, h.security_id, h.name, h.ticker, h.security_type,
		       h.quantity, h.price, h.value, h.cost_basis
		FROM holdings h
		JOIN (
			SELECT account_id, MAX(as_of) AS latest
			FROM holdings
			WHERE as_of <= ?
			GROUP BY account_id
		) l ON h.account_id = l.account_id AND h.as_of = l.latest
	`
	args := []any{asOf.Format(dateLayout)}
	if accountID != "" {
		query += " WHERE h.account_id = ?"
		args = append(args, accountID)
	}
	query += " ORDER BY h.value DESC, h.security_key ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var holdings []model.Holding
	for rows.Next() {
		var (
			h                                 model.Holding
			asOfStr                           string
			securityID, name, ticker, secType sql.NullString
		)
		if err := rows.Scan(&h.AccountID, &asOfStr, &securityID, &name, &ticker, &secType,
			&h.Quantity, &h.Price, &h.Value, &h.CostBasis); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		if h.AsOf, err = parseDate(asOfStr); err != nil {
			return nil, err
		}
		h.SecurityID = securityID.String
		h.Name = name.String
		h.Ticker = ticker.String
		h.SecurityType = secType.String
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}
