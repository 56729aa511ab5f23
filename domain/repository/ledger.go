package repository

import (
	"context"

	"token-platform/domain/model"
)

// ILedger is the only writer of account balances. Every balance change it
// makes is persisted together with exactly one ledger entry.
type ILedger interface {
	GetAccount(ctx context.Context, accountID int64) (model.Account, error)
	// OpenAccount creates a zero balance account and applies opening, if any,
	// in the same transaction.
	OpenAccount(ctx context.Context, accountID int64, opening *model.LedgerEntry) (model.Account, error)
	// ApplyEntry increments the balance by entry.Amount and records the entry.
	// Debits that would take the balance below zero fail with
	// *model.InsufficientFundsError.
	ApplyEntry(ctx context.Context, entry model.LedgerEntry) (int64, error)
	ListEntries(ctx context.Context, accountID int64, limit int) ([]model.LedgerEntry, error)
	Reconcile(ctx context.Context, accountID int64) (model.Reconciliation, error)
}
