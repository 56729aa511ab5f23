package usecase

import (
	"context"

	"token-platform/domain/dto"
	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"
	"token-platform/infrastructure/metrics"
)

type ILedgerUsecase interface {
	GetAccount(ctx context.Context, accountID int64) (model.Account, error)
	ListEntries(ctx context.Context, accountID int64, limit int) ([]model.LedgerEntry, error)
	// ApplyEntry validates entry against its kind and applies it atomically.
	ApplyEntry(ctx context.Context, entry model.LedgerEntry) (int64, error)
	// UserEntry is the self-service path; only withdrawals are accepted.
	UserEntry(ctx context.Context, accountID int64, req dto.EntryRequest) (int64, error)
	Reconcile(ctx context.Context, accountID int64) (model.Reconciliation, error)
}

type ledgerUsecase struct {
	ledger        repository.ILedger
	minWithdrawal int64
}

func NewLedgerUsecase(ledger repository.ILedger, minWithdrawal int64) ILedgerUsecase {
	return &ledgerUsecase{ledger: ledger, minWithdrawal: minWithdrawal}
}

func (u *ledgerUsecase) GetAccount(ctx context.Context, accountID int64) (model.Account, error) {
	return u.ledger.GetAccount(ctx, accountID)
}

func (u *ledgerUsecase) ListEntries(ctx context.Context, accountID int64, limit int) ([]model.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.ledger.ListEntries(ctx, accountID, limit)
}

func (u *ledgerUsecase) ApplyEntry(ctx context.Context, entry model.LedgerEntry) (int64, error) {
	if err := validateEntry(entry, u.minWithdrawal); err != nil {
		logger.WithRequest(ctx).WithFields(map[string]interface{}{
			"account_id": entry.AccountID,
			"amount":     entry.Amount,
			"kind":       entry.Kind,
		}).Warn("ledger entry rejected")
		return 0, err
	}
	balance, err := u.ledger.ApplyEntry(ctx, entry)
	if err != nil {
		logger.WithRequest(ctx).WithField("error", err).WithField("account_id", entry.AccountID).Warn("ledger entry failed")
		return 0, err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(entry.Kind)).Inc()
	logger.WithRequest(ctx).WithFields(map[string]interface{}{
		"account_id":  entry.AccountID,
		"amount":      entry.Amount,
		"kind":        entry.Kind,
		"new_balance": balance,
	}).Info("ledger entry applied")
	return balance, nil
}

func (u *ledgerUsecase) UserEntry(ctx context.Context, accountID int64, req dto.EntryRequest) (int64, error) {
	kind := model.EntryKind(req.Kind)
	if kind != model.EntryWithdrawal {
		return 0, model.NewValidationError("only withdrawals can be requested, got %q", req.Kind)
	}
	return u.ApplyEntry(ctx, model.LedgerEntry{
		AccountID:   accountID,
		Amount:      req.Amount,
		Kind:        kind,
		Description: req.Description,
	})
}

func (u *ledgerUsecase) Reconcile(ctx context.Context, accountID int64) (model.Reconciliation, error) {
	rec, err := u.ledger.Reconcile(ctx, accountID)
	if err == nil && !rec.Consistent {
		logger.WithRequest(ctx).WithFields(map[string]interface{}{
			"account_id": accountID,
			"balance":    rec.Balance,
			"ledger_sum": rec.LedgerSum,
		}).Error("balance does not match ledger")
	}
	return rec, err
}

// validateEntry enforces the sign of each kind and the withdrawal floor.
func validateEntry(entry model.LedgerEntry, minWithdrawal int64) error {
	if !entry.Kind.Valid() {
		return model.NewValidationError("unknown entry kind %q", entry.Kind)
	}
	if entry.AccountID <= 0 {
		return model.NewValidationError("account id is required")
	}
	switch entry.Kind {
	case model.EntryWithdrawal:
		if entry.Amount >= 0 || -entry.Amount < minWithdrawal {
			return model.NewValidationError("withdrawal must be negative with an absolute value of at least %d", minWithdrawal)
		}
	case model.EntryVideoGeneration:
		if entry.Amount >= 0 {
			return model.NewValidationError("video generation entries are debits")
		}
	default:
		if entry.Amount <= 0 {
			return model.NewValidationError("%s entries must be positive", entry.Kind)
		}
	}
	return nil
}
