package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"
)

// LedgerRepository keeps account balances and their entries in PostgreSQL.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.ILedger {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetAccount(ctx context.Context, accountID int64) (model.Account, error) {
	var a model.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, balance, created_at, updated_at FROM accounts WHERE user_id = $1`, accountID).
		Scan(&a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, model.ErrAccountNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("account_id", accountID).Error("query account failed")
		return a, err
	}
	return a, nil
}

func (r *LedgerRepository) OpenAccount(ctx context.Context, accountID int64, opening *model.LedgerEntry) (model.Account, error) {
	now := time.Now().UTC()
	account := model.Account{UserID: accountID, CreatedAt: now, UpdatedAt: now}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (user_id, balance, created_at, updated_at) VALUES ($1, 0, $2, $2) ON CONFLICT (user_id) DO NOTHING`,
			accountID, now)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("account %d already exists: %w", accountID, model.ErrConflict)
		}
		if opening == nil {
			return nil
		}
		entry := *opening
		entry.AccountID = accountID
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		balance, err := applyEntry(ctx, tx, entry)
		if err != nil {
			return err
		}
		account.Balance = balance
		return nil
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("account_id", accountID).Error("open account failed")
		return model.Account{}, err
	}
	return account, nil
}

func (r *LedgerRepository) ApplyEntry(ctx context.Context, entry model.LedgerEntry) (int64, error) {
	if !entry.Kind.Valid() {
		return 0, model.NewValidationError("unknown entry kind %q", entry.Kind)
	}
	if entry.Amount == 0 {
		return 0, model.NewValidationError("amount must not be zero")
	}

	var balance int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		balance, err = applyEntry(ctx, tx, entry)
		return err
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *LedgerRepository) ListEntries(ctx context.Context, accountID int64, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, amount, kind, description, created_at FROM ledger_entries WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.LedgerEntry, 0)
	for rows.Next() {
		var e model.LedgerEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &kind, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = model.EntryKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *LedgerRepository) Reconcile(ctx context.Context, accountID int64) (model.Reconciliation, error) {
	rec := model.Reconciliation{AccountID: accountID}
	err := r.db.QueryRowContext(ctx,
		`SELECT a.balance, COALESCE(SUM(e.amount), 0) FROM accounts a LEFT JOIN ledger_entries e ON e.account_id = a.user_id WHERE a.user_id = $1 GROUP BY a.balance`,
		accountID).Scan(&rec.Balance, &rec.LedgerSum)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, model.ErrAccountNotFound
	}
	if err != nil {
		return rec, err
	}
	rec.Consistent = rec.Balance == rec.LedgerSum
	return rec, nil
}
