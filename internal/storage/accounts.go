package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ask/internal/common"
	"github.com/Veraticus/spice-ask/internal/model"
)

const accountColumns = `id, name, official_name, type, subtype, institution_name, mask, balance, is_active, created_at`

// SaveAccount inserts or updates an account.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, name, official_name, type, subtype, institution_name, mask, balance, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				official_name = excluded.official_name,
				type = excluded.type,
				subtype = excluded.subtype,
				institution_name = excluded.institution_name,
				mask = excluded.mask,
				balance = excluded.balance,
				is_active = excluded.is_active
		`,
			account.ID,
			account.Name,
			account.OfficialName,
			string(account.Type),
			account.Subtype,
			account.InstitutionName,
			account.Mask,
			account.Balance,
			account.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to save account %s: %w", account.ID, err)
		}
		return nil
	})
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	account, err := scanAccount(row)
	if isNoRows(err) {
		return nil, common.ErrNotFound
	}
	return account, err
}

// GetAccounts lists accounts ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context, activeOnly bool) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := "SELECT " + accountColumns + " FROM accounts"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// FindAccount resolves an account by exact id or case-insensitive name
// substring. An exact id wins over a name match.
func (s *SQLiteStorage) FindAccount(ctx context.Context, nameOrID string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	nameOrID = strings.TrimSpace(nameOrID)
	if err := validateString(nameOrID, "nameOrID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE id = ? OR LOWER(name) LIKE ? ESCAPE '\'
		ORDER BY (id = ?) DESC, is_active DESC, name ASC
		LIMIT 1
	`, nameOrID, likePattern(nameOrID), nameOrID)

	account, err := scanAccount(row)
	if isNoRows(err) {
		return nil, fmt.Errorf("account %q: %w", nameOrID, common.ErrNotFound)
	}
	return account, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		account                              model.Account
		accountType                          string
		official, subtype, institution, mask sql.NullString
	)
	err := row.Scan(
		&account.ID,
		&account.Name,
		&official,
		&accountType,
		&subtype,
		&institution,
		&mask,
		&account.Balance,
		&account.IsActive,
		&account.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	account.Type = model.AccountType(accountType)
	account.OfficialName = official.String
	account.Subtype = subtype.String
	account.InstitutionName = institution.String
	account.Mask = mask.String
	return &account, nil
}
