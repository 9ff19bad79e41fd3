// Package testutil provides test helpers: an isolated in-memory database and
// fluent builders for seeding it.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-ask/internal/model"
	"github.com/Veraticus/spice-ask/internal/storage"
)

// TestDB is a migrated in-memory database scoped to one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides seed data and hooks for test database setup.
type TestDBOptions struct {
	CustomSetup  func(context.Context, *storage.SQLiteStorage) error
	Accounts     []model.Account
	Transactions []model.Transaction
	Holdings     []model.Holding
	Snapshots    []model.NetWorthSnapshot
}

// SetupTestDB creates a new, empty, migrated in-memory database. It is
// closed automatically when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database and seeds it.
//
// Example:
//
//	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
//		Accounts:     []model.Account{testutil.Checking()},
//		Transactions: []model.Transaction{testutil.NewTransaction("t1").Build()},
//	})
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range opts.Accounts {
		if err := store.SaveAccount(ctx, &opts.Accounts[i]); err != nil {
			t.Fatalf("failed to seed account %q: %v", opts.Accounts[i].ID, err)
		}
	}
	if len(opts.Transactions) > 0 {
		if _, err := store.SaveTransactions(ctx, opts.Transactions); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
	}
	if len(opts.Holdings) > 0 {
		if err := store.SaveHoldings(ctx, opts.Holdings); err != nil {
			t.Fatalf("failed to seed holdings: %v", err)
		}
	}
	for i := range opts.Snapshots {
		if err := store.SaveNetWorthSnapshot(ctx, &opts.Snapshots[i]); err != nil {
			t.Fatalf("failed to seed snapshot: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustCount returns the number of stored transactions or fails the test.
func (db *TestDB) MustCount() int {
	db.t.Helper()
	n, err := db.Storage.GetTransactionCount(context.Background())
	if err != nil {
		db.t.Fatalf("failed to count transactions: %v", err)
	}
	return n
}
