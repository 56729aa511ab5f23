package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-platform/domain/model"
)

const (
	updateBalanceSQL = `UPDATE accounts SET balance = balance + $1, updated_at = $3 WHERE user_id = $2 AND balance + $1 >= 0 RETURNING balance`
	lookupBalanceSQL = `SELECT balance FROM accounts WHERE user_id = $1`
	insertEntrySQL   = `INSERT INTO ledger_entries (account_id, amount, kind, description, created_at) VALUES ($1, $2, $3, $4, $5)`
)

func TestLedgerRepository_ApplyEntry_Credit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(updateBalanceSQL)).
		WithArgs(int64(500), int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(1500)))
	mock.ExpectExec(regexp.QuoteMeta(insertEntrySQL)).
		WithArgs(int64(7), int64(500), "deposit", "top up", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	balance, err := repo.ApplyEntry(context.Background(), model.LedgerEntry{
		AccountID: 7, Amount: 500, Kind: model.EntryDeposit, Description: "top up",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_ApplyEntry_InsufficientFunds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(updateBalanceSQL)).
		WithArgs(int64(-1000), int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectQuery(regexp.QuoteMeta(lookupBalanceSQL)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(400)))
	mock.ExpectRollback()

	_, err = repo.ApplyEntry(context.Background(), model.LedgerEntry{
		AccountID: 7, Amount: -1000, Kind: model.EntryWithdrawal,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientFunds))
	var insufficient *model.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(400), insufficient.Balance)
	assert.Equal(t, int64(1000), insufficient.Required)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_ApplyEntry_AccountNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(updateBalanceSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectQuery(regexp.QuoteMeta(lookupBalanceSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectRollback()

	_, err = repo.ApplyEntry(context.Background(), model.LedgerEntry{AccountID: 99, Amount: 5, Kind: model.EntryDeposit})

	assert.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_ApplyEntry_RejectsUnknownKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)
	_, err = repo.ApplyEntry(context.Background(), model.LedgerEntry{AccountID: 1, Amount: 5, Kind: "gift"})

	assert.ErrorIs(t, err, model.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_OpenAccount_WithBonus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO accounts (user_id, balance, created_at, updated_at) VALUES ($1, 0, $2, $2) ON CONFLICT (user_id) DO NOTHING`)).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(updateBalanceSQL)).
		WithArgs(int64(2), int64(3), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(2)))
	mock.ExpectExec(regexp.QuoteMeta(insertEntrySQL)).
		WithArgs(int64(3), int64(2), "deposit", "welcome bonus", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	account, err := repo.OpenAccount(context.Background(), 3, &model.LedgerEntry{
		Amount: 2, Kind: model.EntryDeposit, Description: "welcome bonus",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), account.UserID)
	assert.Equal(t, int64(2), account.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_OpenAccount_Existing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO accounts`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = repo.OpenAccount(context.Background(), 3, nil)

	assert.ErrorIs(t, err, model.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_OpenAccount_RowsAffectedError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)
	driverErr := errors.New("rows affected unavailable")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO accounts`)).
		WillReturnResult(sqlmock.NewErrorResult(driverErr))
	mock.ExpectRollback()

	_, err = repo.OpenAccount(context.Background(), 3, nil)

	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, model.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_ListEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)
	at := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, account_id, amount, kind, description, created_at FROM ledger_entries WHERE account_id = $1`)).
		WithArgs(int64(7), 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "amount", "kind", "description", "created_at"}).
			AddRow(int64(2), int64(7), int64(-2), "video_generation", "video generation", at).
			AddRow(int64(1), int64(7), int64(2), "deposit", "welcome bonus", at))

	entries, err := repo.ListEntries(context.Background(), 7, 0)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.EntryVideoGeneration, entries[0].Kind)
	assert.Equal(t, int64(-2), entries[0].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_Reconcile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT a.balance, COALESCE(SUM(e.amount), 0) FROM accounts a`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "sum"}).AddRow(int64(10), int64(10)))

	rec, err := repo.Reconcile(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, int64(10), rec.LedgerSum)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_GetAccount_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLedgerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, balance, created_at, updated_at FROM accounts WHERE user_id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "balance", "created_at", "updated_at"}))

	_, err = repo.GetAccount(context.Background(), 404)

	assert.ErrorIs(t, err, model.ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
