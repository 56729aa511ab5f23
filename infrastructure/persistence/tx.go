package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"token-platform/domain/model"

	"github.com/lib/pq"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// applyEntry moves the balance by entry.Amount and writes the matching ledger
// row on q. The increment is done in SQL and guarded against going negative,
// so concurrent callers serialize on the account row.
func applyEntry(ctx context.Context, q dbtx, entry model.LedgerEntry) (int64, error) {
	at := entry.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var balance int64
	err := q.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_at = $3 WHERE user_id = $2 AND balance + $1 >= 0 RETURNING balance`,
		entry.Amount, entry.AccountID, at).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		var current int64
		lookupErr := q.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE user_id = $1`, entry.AccountID).Scan(&current)
		if errors.Is(lookupErr, sql.ErrNoRows) {
			return 0, model.ErrAccountNotFound
		}
		if lookupErr != nil {
			return 0, lookupErr
		}
		return 0, &model.InsufficientFundsError{Balance: current, Required: -entry.Amount}
	}
	if err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}

	if _, err := q.ExecContext(ctx,
		`INSERT INTO ledger_entries (account_id, amount, kind, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		entry.AccountID, entry.Amount, string(entry.Kind), entry.Description, at); err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}
	return balance, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
