package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/service"
)

const (
	dateLayout   = "2006-01-02"
	postedLayout = time.RFC3339
)

const transactionColumns = `id, hash, account_id, date, posted_at, name, merchant_name, type,
	amount, expense_category, primary_category, detailed_category, income_type,
	ticker, quantity, is_expense, is_income, is_pending`

// SaveTransactions inserts transactions, skipping any whose hash is already
// stored. It returns the number of rows actually inserted.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	var inserted int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		n, err := s.saveTransactionsTx(ctx, tx, transactions)
		inserted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		var postedAt sql.NullString
		if txn.PostedAt != nil {
			postedAt = sql.NullString{String: txn.PostedAt.Format(postedLayout), Valid: true}
		}
		var quantity sql.NullFloat64
		if txn.Quantity != 0 {
			quantity = sql.NullFloat64{Float64: txn.Quantity, Valid: true}
		}

		res, execErr := stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.AccountID,
			txn.Date.Format(dateLayout),
			postedAt,
			txn.Name,
			txn.MerchantName,
			txn.Type,
			txn.Amount,
			txn.ExpenseCategory,
			txn.PrimaryCategory,
			txn.DetailedCategory,
			txn.IncomeType,
			txn.Ticker,
			quantity,
			txn.IsExpense,
			txn.IsIncome,
			txn.IsPending,
		)
		if execErr != nil {
			return inserted, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, execErr)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	return inserted, nil
}

// QueryTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) QueryTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.queryTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) queryTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	where, args := buildTransactionWhere(filter)

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, posted_at DESC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

func buildTransactionWhere(filter service.TransactionFilter) ([]string, []any) {
	var where []string
	var args []any

	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate.Format(dateLayout))
	}
	if filter.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.MerchantContains != "" {
		where = append(where, `LOWER(COALESCE(NULLIF(merchant_name, ''), name)) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.MerchantContains))
	}
	if filter.CategoryContains != "" {
		pattern := likePattern(filter.CategoryContains)
		where = append(where, `(LOWER(COALESCE(expense_category, '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(primary_category, '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(detailed_category, '')) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(merchant_name, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.ExpensesOnly {
		where = append(where, "is_expense = 1")
	}
	if filter.IncomeOnly {
		where = append(where, "is_income = 1")
	}
	if filter.MinAbsAmount > 0 {
		where = append(where, "ABS(amount) >= ?")
		args = append(args, filter.MinAbsAmount)
	}

	return where, args
}

// likePattern builds a lowercase substring LIKE pattern with wildcards in
// the input escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// GetTransactionCount returns the total number of transactions.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get transaction count: %w", err)
	}
	return count, nil
}

// GetLatestTransactionDate returns the date of the latest transaction.
func (s *SQLiteStorage) GetLatestTransactionDate(ctx context.Context) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}

	var date sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(date) FROM transactions`).Scan(&date); err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest transaction date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, common.ErrNotFound
	}
	return parseDate(date.String)
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn                                           model.Transaction
			date                                          string
			postedAt, merchant, txnType, ticker           sql.NullString
			expenseCat, primaryCat, detailedCat, incomeTy sql.NullString
			quantity                                      sql.NullFloat64
		)

		err := rows.Scan(
			&txn.ID,
			&txn.Hash,
			&txn.AccountID,
			&date,
			&postedAt,
			&txn.Name,
			&merchant,
			&txnType,
			&txn.Amount,
			&expenseCat,
			&primaryCat,
			&detailedCat,
			&incomeTy,
			&ticker,
			&quantity,
			&txn.IsExpense,
			&txn.IsIncome,
			&txn.IsPending,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if txn.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if postedAt.Valid && postedAt.String != "" {
			t, parseErr := time.Parse(postedLayout, postedAt.String)
			if parseErr != nil {
				return nil, fmt.Errorf("transaction %s: bad posted_at %q: %w", txn.ID, postedAt.String, parseErr)
			}
			txn.PostedAt = &t
		}
		txn.MerchantName = merchant.String
		txn.Type = txnType.String
		txn.ExpenseCategory = expenseCat.String
		txn.PrimaryCategory = primaryCat.String
		txn.DetailedCategory = detailedCat.String
		txn.IncomeType = incomeTy.String
		txn.Ticker = ticker.String
		txn.Quantity = quantity.Float64

		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func parseDate(s string) (time.Time, error) {
	// Older rows may carry a full timestamp.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return t, nil
}

// isNoRows reports whether err is sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
