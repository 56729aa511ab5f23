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

// ReferralRepository stores referral edges and weekly per-referrer counters.
type ReferralRepository struct {
	db *sql.DB
}

func NewReferralRepository(db *sql.DB) repository.IReferral {
	return &ReferralRepository{db: db}
}

const statColumns = `id, referrer_id, week_start, week_end, new_referrals, total_spending, leaderboard_position, payout_percent, payout_amount, is_paid`

func (r *ReferralRepository) CreateReferral(ctx context.Context, edge model.ReferralEdge, week model.Week) (model.ReferralEdge, error) {
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO referrals (referrer_id, referred_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
			edge.ReferrerID, edge.ReferredID, edge.CreatedAt).Scan(&edge.ID)
		if isUniqueViolation(err) {
			return model.ErrAlreadyReferred
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO weekly_referral_stats (referrer_id, week_start, week_end, new_referrals, total_spending, is_paid, created_at, updated_at)
			 VALUES ($1, $2, $3, 1, 0, false, $4, $4)
			 ON CONFLICT (referrer_id, week_start) DO UPDATE SET
			   new_referrals = weekly_referral_stats.new_referrals + 1,
			   updated_at = EXCLUDED.updated_at`,
			edge.ReferrerID, week.Start, week.End, edge.CreatedAt)
		return err
	})
	if err != nil {
		if !errors.Is(err, model.ErrAlreadyReferred) {
			logger.GetLogger().WithField("error", err).WithField("referrer_id", edge.ReferrerID).Error("create referral failed")
		}
		return model.ReferralEdge{}, err
	}
	return edge, nil
}

func (r *ReferralRepository) ReferrerOf(ctx context.Context, referredID int64) (int64, bool, error) {
	var referrerID int64
	err := r.db.QueryRowContext(ctx, `SELECT referrer_id FROM referrals WHERE referred_id = $1`, referredID).Scan(&referrerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return referrerID, true, nil
}

func (r *ReferralRepository) ListReferred(ctx context.Context, referrerID int64) ([]model.ReferralEdge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, referrer_id, referred_id, created_at FROM referrals WHERE referrer_id = $1 ORDER BY created_at DESC`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := make([]model.ReferralEdge, 0)
	for rows.Next() {
		var e model.ReferralEdge
		if err := rows.Scan(&e.ID, &e.ReferrerID, &e.ReferredID, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (r *ReferralRepository) AddSpending(ctx context.Context, referrerID int64, week model.Week, amount int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO weekly_referral_stats (referrer_id, week_start, week_end, new_referrals, total_spending, is_paid, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, $4, false, $5, $5)
		 ON CONFLICT (referrer_id, week_start) DO UPDATE SET
		   total_spending = weekly_referral_stats.total_spending + EXCLUDED.total_spending,
		   updated_at = EXCLUDED.updated_at`,
		referrerID, week.Start, week.End, amount, at)
	return err
}

func (r *ReferralRepository) WeekStats(ctx context.Context, weekStart time.Time) ([]model.WeeklyReferralStat, error) {
	return r.queryStats(ctx,
		`SELECT `+statColumns+` FROM weekly_referral_stats WHERE week_start = $1 AND new_referrals > 0 ORDER BY new_referrals DESC, referrer_id ASC`,
		weekStart)
}

func (r *ReferralRepository) GetStat(ctx context.Context, referrerID int64, weekStart time.Time) (*model.WeeklyReferralStat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statColumns+` FROM weekly_referral_stats WHERE referrer_id = $1 AND week_start = $2`, referrerID, weekStart)
	stat, err := scanStat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (r *ReferralRepository) PaidHistory(ctx context.Context, referrerID int64) ([]model.WeeklyReferralStat, error) {
	return r.queryStats(ctx,
		`SELECT `+statColumns+` FROM weekly_referral_stats WHERE referrer_id = $1 AND is_paid = true ORDER BY week_start DESC`,
		referrerID)
}

func (r *ReferralRepository) Settle(ctx context.Context, s model.Settlement) (int64, error) {
	var balance int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE weekly_referral_stats SET leaderboard_position = $1, payout_percent = $2, payout_amount = $3, is_paid = true, updated_at = $4 WHERE id = $5 AND is_paid = false`,
			s.Position, s.Percent, s.Amount, s.At, s.StatID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return model.ErrAlreadySettled
		}

		if s.Amount <= 0 {
			err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE user_id = $1`, s.ReferrerID).Scan(&balance)
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrAccountNotFound
			}
			return err
		}
		balance, err = applyEntry(ctx, tx, model.LedgerEntry{
			AccountID:   s.ReferrerID,
			Amount:      s.Amount,
			Kind:        model.EntryReferralBonus,
			Description: s.Description,
			CreatedAt:   s.At,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("settle stat %d: %w", s.StatID, err)
	}
	return balance, nil
}

func (r *ReferralRepository) queryStats(ctx context.Context, query string, args ...interface{}) ([]model.WeeklyReferralStat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]model.WeeklyReferralStat, 0)
	for rows.Next() {
		s, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStat(row scanner) (model.WeeklyReferralStat, error) {
	var (
		s        model.WeeklyReferralStat
		position sql.NullInt64
		percent  sql.NullInt64
		amount   sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.ReferrerID, &s.WeekStart, &s.WeekEnd, &s.NewReferrals, &s.TotalSpending,
		&position, &percent, &amount, &s.IsPaid); err != nil {
		return s, err
	}
	if position.Valid {
		p := int(position.Int64)
		s.LeaderboardPosition = &p
	}
	if percent.Valid {
		p := int(percent.Int64)
		s.PayoutPercent = &p
	}
	if amount.Valid {
		a := amount.Int64
		s.PayoutAmount = &a
	}
	return s, nil
}
