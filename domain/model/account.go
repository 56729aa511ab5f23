package model

import "time"

type EntryKind string

const (
	EntryDeposit         EntryKind = "deposit"
	EntryWithdrawal      EntryKind = "withdrawal"
	EntryReferralBonus   EntryKind = "referral_bonus"
	EntryVideoGeneration EntryKind = "video_generation"
)

func (k EntryKind) Valid() bool {
	switch k {
	case EntryDeposit, EntryWithdrawal, EntryReferralBonus, EntryVideoGeneration:
		return true
	}
	return false
}

// Account holds a token balance in integer minor units. The balance only
// moves together with a LedgerEntry.
type Account struct {
	UserID    int64     `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerEntry is an immutable record of a signed balance change.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	Amount      int64     `json:"amount"`
	Kind        EntryKind `json:"kind"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reconciliation compares a stored balance against the sum of its entries.
type Reconciliation struct {
	AccountID  int64 `json:"account_id"`
	Balance    int64 `json:"balance"`
	LedgerSum  int64 `json:"ledger_sum"`
	Consistent bool  `json:"consistent"`
}
