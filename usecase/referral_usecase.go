package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"
	"token-platform/infrastructure/metrics"
)

const payoutLockKey = "lock:referral:weekly-payout"

type ReferralConfig struct {
	Location       *time.Location
	LeaderboardTTL time.Duration
	LockTTL        time.Duration
}

type IReferralUsecase interface {
	RegisterReferral(ctx context.Context, referrerID, referredID int64) (model.ReferralEdge, error)
	// RecordSpend credits amount to the weekly spend of referredID's referrer.
	// Users without a referrer are a no-op.
	RecordSpend(ctx context.Context, referredID, amount int64) error
	RunWeeklyPayout(ctx context.Context, asOf time.Time) (model.PayoutResult, error)
	ListReferred(ctx context.Context, referrerID int64) ([]model.ReferralEdge, error)
	PayoutHistory(ctx context.Context, referrerID int64) (model.PayoutHistory, error)
	Leaderboard(ctx context.Context) (model.Leaderboard, error)
}

type referralUsecase struct {
	referrals repository.IReferral
	ledger    repository.ILedger
	policy    IPayoutPolicy
	reports   repository.IPayoutReport
	cache     repository.ILeaderboardCache
	locker    repository.ILocker
	events    repository.IEventPublisher
	cfg       ReferralConfig
	now       func() time.Time
}

func NewReferralUsecase(
	referrals repository.IReferral,
	ledger repository.ILedger,
	policy IPayoutPolicy,
	reports repository.IPayoutReport,
	cache repository.ILeaderboardCache,
	locker repository.ILocker,
	events repository.IEventPublisher,
	cfg ReferralConfig,
	now func() time.Time,
) IReferralUsecase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &referralUsecase{
		referrals: referrals,
		ledger:    ledger,
		policy:    policy,
		reports:   reports,
		cache:     cache,
		locker:    locker,
		events:    events,
		cfg:       cfg,
		now:       now,
	}
}

func (u *referralUsecase) RegisterReferral(ctx context.Context, referrerID, referredID int64) (model.ReferralEdge, error) {
	if referrerID <= 0 || referredID <= 0 {
		return model.ReferralEdge{}, model.NewValidationError("referrer and referred ids are required")
	}
	if referrerID == referredID {
		return model.ReferralEdge{}, model.NewValidationError("a user cannot refer themselves")
	}
	if _, err := u.ledger.GetAccount(ctx, referrerID); err != nil {
		return model.ReferralEdge{}, err
	}

	now := u.now()
	edge, err := u.referrals.CreateReferral(ctx,
		model.ReferralEdge{ReferrerID: referrerID, ReferredID: referredID, CreatedAt: now},
		model.WeekOf(now, u.cfg.Location))
	if err != nil {
		logger.WithRequest(ctx).WithFields(map[string]interface{}{
			"referrer_id": referrerID,
			"referred_id": referredID,
			"error":       err,
		}).Warn("register referral failed")
		return model.ReferralEdge{}, err
	}
	logger.WithRequest(ctx).WithField("referrer_id", referrerID).WithField("referred_id", referredID).Info("referral registered")
	return edge, nil
}

func (u *referralUsecase) RecordSpend(ctx context.Context, referredID, amount int64) error {
	if amount <= 0 {
		return model.NewValidationError("spend amount must be positive")
	}
	referrerID, ok, err := u.referrals.ReferrerOf(ctx, referredID)
	if err != nil || !ok {
		return err
	}
	now := u.now()
	return u.referrals.AddSpending(ctx, referrerID, model.WeekOf(now, u.cfg.Location), amount, now)
}

// RunWeeklyPayout settles the last completed week before asOf. Positions are
// ranked over every row of that week, paid or not, so a resumed run assigns
// the same positions as an uninterrupted one. Only unpaid rows are settled and
// each row commits on its own; a failing row is reported and skipped over.
func (u *referralUsecase) RunWeeklyPayout(ctx context.Context, asOf time.Time) (model.PayoutResult, error) {
	week := model.PreviousWeek(asOf, u.cfg.Location)
	log := logger.WithRequest(ctx).WithField("week_start", week.Start).WithField("week_end", week.End)

	if u.locker != nil {
		release, ok, err := u.locker.TryLock(ctx, payoutLockKey, u.cfg.LockTTL)
		switch {
		case err != nil:
			// Settlement is conditional per row, so running unlocked cannot double pay.
			log.WithField("error", err).Warn("payout lock unavailable, continuing without it")
		case !ok:
			return model.PayoutResult{}, fmt.Errorf("weekly payout already running: %w", model.ErrConflict)
		default:
			defer release()
		}
	}

	stats, err := u.referrals.WeekStats(ctx, week.Start)
	if err != nil {
		return model.PayoutResult{}, err
	}

	result := model.PayoutResult{
		WeekStart: week.Start,
		WeekEnd:   week.End,
		Payouts:   make([]model.Payout, 0),
		Failures:  make([]model.PayoutFailure, 0),
		RanAt:     u.now(),
	}
	for _, ranked := range model.DenseRank(stats) {
		stat := ranked.Stat
		if stat.IsPaid {
			result.SkippedCount++
			continue
		}
		percent := clampPercent(u.policy.Percent(ranked.Position, stat.NewReferrals))
		amount := payoutAmount(stat.TotalSpending, percent)

		balance, err := u.referrals.Settle(ctx, model.Settlement{
			StatID:     stat.ID,
			ReferrerID: stat.ReferrerID,
			Position:   ranked.Position,
			Percent:    percent,
			Amount:     amount,
			Description: fmt.Sprintf("referral bonus for week %s - %s (position %d, %d%%)",
				week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"), ranked.Position, percent),
			At: result.RanAt,
		})
		switch {
		case errors.Is(err, model.ErrAlreadySettled):
			result.SkippedCount++
			metrics.ReferralPayoutsTotal.WithLabelValues("skipped").Inc()
			continue
		case err != nil:
			result.Failures = append(result.Failures, model.PayoutFailure{ReferrerID: stat.ReferrerID, StatID: stat.ID, Error: err.Error()})
			metrics.ReferralPayoutsTotal.WithLabelValues("failed").Inc()
			log.WithField("referrer_id", stat.ReferrerID).WithField("error", err).Error("referral payout failed")
			continue
		}

		payout := model.Payout{
			ReferrerID:    stat.ReferrerID,
			Position:      ranked.Position,
			NewReferrals:  stat.NewReferrals,
			TotalSpending: stat.TotalSpending,
			Percent:       percent,
			PayoutAmount:  amount,
			NewBalance:    balance,
		}
		result.Payouts = append(result.Payouts, payout)
		result.PaidCount++
		metrics.ReferralPayoutsTotal.WithLabelValues("paid").Inc()
		metrics.ReferralPayoutAmountTotal.Add(float64(amount))
		if amount > 0 {
			metrics.LedgerEntriesTotal.WithLabelValues(string(model.EntryReferralBonus)).Inc()
		}
		if u.events != nil {
			_ = u.events.Publish(ctx, model.NewEvent(model.EventReferralPayoutSettled, stat.ReferrerID, result.RanAt, map[string]interface{}{
				"week_start": week.Start,
				"position":   ranked.Position,
				"percent":    percent,
				"amount":     amount,
			}))
		}
	}

	log.WithFields(map[string]interface{}{
		"paid":    result.PaidCount,
		"skipped": result.SkippedCount,
		"failed":  len(result.Failures),
	}).Info("weekly referral payout finished")

	if u.reports != nil && (result.PaidCount > 0 || len(result.Failures) > 0) {
		if err := u.reports.Save(ctx, result); err != nil {
			log.WithField("error", err).Warn("payout report not archived")
		}
	}
	return result, nil
}

func (u *referralUsecase) ListReferred(ctx context.Context, referrerID int64) ([]model.ReferralEdge, error) {
	return u.referrals.ListReferred(ctx, referrerID)
}

func (u *referralUsecase) PayoutHistory(ctx context.Context, referrerID int64) (model.PayoutHistory, error) {
	week := model.WeekOf(u.now(), u.cfg.Location)
	current, err := u.referrals.GetStat(ctx, referrerID, week.Start)
	if err != nil {
		return model.PayoutHistory{}, err
	}
	history, err := u.referrals.PaidHistory(ctx, referrerID)
	if err != nil {
		return model.PayoutHistory{}, err
	}
	return model.PayoutHistory{CurrentWeek: current, History: history}, nil
}

// Leaderboard ranks the current week live, with the percent each position
// would earn if the week closed now.
func (u *referralUsecase) Leaderboard(ctx context.Context) (model.Leaderboard, error) {
	week := model.WeekOf(u.now(), u.cfg.Location)
	if u.cache != nil {
		cached, err := u.cache.Get(ctx, week.Start)
		if err != nil {
			logger.WithRequest(ctx).WithField("error", err).Warn("leaderboard cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	stats, err := u.referrals.WeekStats(ctx, week.Start)
	if err != nil {
		return model.Leaderboard{}, err
	}
	board := model.Leaderboard{WeekStart: week.Start, WeekEnd: week.End, Entries: make([]model.LeaderboardEntry, 0, len(stats))}
	for _, ranked := range model.DenseRank(stats) {
		board.Entries = append(board.Entries, model.LeaderboardEntry{
			ReferrerID:    ranked.Stat.ReferrerID,
			Position:      ranked.Position,
			NewReferrals:  ranked.Stat.NewReferrals,
			TotalSpending: ranked.Stat.TotalSpending,
			Percent:       clampPercent(u.policy.Percent(ranked.Position, ranked.Stat.NewReferrals)),
		})
	}

	if u.cache != nil && u.cfg.LeaderboardTTL > 0 {
		if err := u.cache.Set(ctx, board, u.cfg.LeaderboardTTL); err != nil {
			logger.WithRequest(ctx).WithField("error", err).Warn("leaderboard cache write failed")
		}
	}
	return board, nil
}
