package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-platform/domain/dto"
	"token-platform/domain/model"
	"token-platform/usecase"
)

func TestLedgerUsecase_ApplyEntry(t *testing.T) {
	store := newMemStore()
	store.seedAccount(1, 1500)
	uc := usecase.NewLedgerUsecase(store, 1000)
	ctx := context.Background()

	tests := []struct {
		name    string
		entry   model.LedgerEntry
		wantErr error
	}{
		{"unknown kind", model.LedgerEntry{AccountID: 1, Amount: 5, Kind: "gift"}, model.ErrValidation},
		{"positive withdrawal", model.LedgerEntry{AccountID: 1, Amount: 1000, Kind: model.EntryWithdrawal}, model.ErrValidation},
		{"withdrawal below minimum", model.LedgerEntry{AccountID: 1, Amount: -999, Kind: model.EntryWithdrawal}, model.ErrValidation},
		{"negative deposit", model.LedgerEntry{AccountID: 1, Amount: -5, Kind: model.EntryDeposit}, model.ErrValidation},
		{"positive generation charge", model.LedgerEntry{AccountID: 1, Amount: 2, Kind: model.EntryVideoGeneration}, model.ErrValidation},
		{"overdraft", model.LedgerEntry{AccountID: 1, Amount: -2000, Kind: model.EntryWithdrawal}, model.ErrInsufficientFunds},
		{"missing account", model.LedgerEntry{AccountID: 9, Amount: 5, Kind: model.EntryDeposit}, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.ApplyEntry(ctx, tt.entry)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, int64(1500), store.balance(1))

	balance, err := uc.ApplyEntry(ctx, model.LedgerEntry{AccountID: 1, Amount: -1000, Kind: model.EntryWithdrawal, Description: "cash out"})
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)

	balance, err = uc.ApplyEntry(ctx, model.LedgerEntry{AccountID: 1, Amount: 25, Kind: model.EntryReferralBonus})
	require.NoError(t, err)
	assert.Equal(t, int64(525), balance)

	rec, err := uc.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, int64(525), rec.LedgerSum)
}

func TestLedgerUsecase_UserEntry(t *testing.T) {
	store := newMemStore()
	store.seedAccount(1, 1200)
	uc := usecase.NewLedgerUsecase(store, 1000)

	_, err := uc.UserEntry(context.Background(), 1, dto.EntryRequest{Amount: 50, Kind: "deposit"})
	assert.ErrorIs(t, err, model.ErrValidation)

	balance, err := uc.UserEntry(context.Background(), 1, dto.EntryRequest{Amount: -1200, Kind: "withdrawal"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestLedgerUsecase_ListEntries(t *testing.T) {
	store := newMemStore()
	store.seedAccount(1, 10)
	uc := usecase.NewLedgerUsecase(store, 1000)
	for i := 0; i < 3; i++ {
		_, err := uc.ApplyEntry(context.Background(), model.LedgerEntry{AccountID: 1, Amount: int64(i + 1), Kind: model.EntryDeposit})
		require.NoError(t, err)
	}

	entries, err := uc.ListEntries(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, int64(3), entries[0].Amount)

	entries, err = uc.ListEntries(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
