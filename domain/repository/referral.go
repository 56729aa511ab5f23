package repository

import (
	"context"
	"time"

	"token-platform/domain/model"
)

type IReferral interface {
	// CreateReferral stores the edge and bumps new_referrals on the referrer's
	// row for week in one transaction. A second edge for the same referred
	// user fails with model.ErrAlreadyReferred.
	CreateReferral(ctx context.Context, edge model.ReferralEdge, week model.Week) (model.ReferralEdge, error)
	ReferrerOf(ctx context.Context, referredID int64) (int64, bool, error)
	ListReferred(ctx context.Context, referrerID int64) ([]model.ReferralEdge, error)
	AddSpending(ctx context.Context, referrerID int64, week model.Week, amount int64, at time.Time) error
	// WeekStats returns every row of the week with new_referrals > 0, paid or not.
	WeekStats(ctx context.Context, weekStart time.Time) ([]model.WeeklyReferralStat, error)
	GetStat(ctx context.Context, referrerID int64, weekStart time.Time) (*model.WeeklyReferralStat, error)
	PaidHistory(ctx context.Context, referrerID int64) ([]model.WeeklyReferralStat, error)
	// Settle marks the row paid and credits the referrer atomically. A row
	// that is already paid fails with model.ErrAlreadySettled.
	Settle(ctx context.Context, s model.Settlement) (newBalance int64, err error)
}

type IPayoutReport interface {
	Save(ctx context.Context, report model.PayoutResult) error
}
