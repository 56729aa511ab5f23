package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"
)

// FeaturedSlotRepository stores the single featured placement as row id=1
// of featured_slot. Takeovers compare-and-swap on its version column.
type FeaturedSlotRepository struct {
	db *sql.DB
}

func NewFeaturedSlotRepository(db *sql.DB) repository.IFeaturedSlot {
	return &FeaturedSlotRepository{db: db}
}

const currentSlotQuery = `SELECT s.version, s.video_id, s.current_bid, s.featured_until,
	v.user_id, v.title, v.status, v.is_public, v.is_featured, v.votes_count, v.created_at
FROM featured_slot s LEFT JOIN videos v ON v.id = s.video_id
WHERE s.id = 1`

func (r *FeaturedSlotRepository) Current(ctx context.Context) (model.FeaturedSlot, error) {
	var (
		slot       model.FeaturedSlot
		videoID    sql.NullInt64
		until      sql.NullTime
		userID     sql.NullInt64
		title      sql.NullString
		status     sql.NullString
		isPublic   sql.NullBool
		isFeatured sql.NullBool
		votes      sql.NullInt64
		createdAt  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, currentSlotQuery).Scan(
		&slot.Version, &videoID, &slot.CurrentBid, &until,
		&userID, &title, &status, &isPublic, &isFeatured, &votes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return slot, fmt.Errorf("featured slot row: %w", model.ErrNotFound)
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("query featured slot failed")
		return slot, err
	}

	if until.Valid {
		t := until.Time
		slot.FeaturedUntil = &t
	}
	if videoID.Valid {
		id := videoID.Int64
		slot.VideoID = &id
		if userID.Valid {
			slot.Video = &model.Video{
				ID:            id,
				UserID:        userID.Int64,
				Title:         title.String,
				Status:        model.VideoStatus(status.String),
				IsPublic:      isPublic.Bool,
				IsFeatured:    isFeatured.Bool,
				CurrentBid:    slot.CurrentBid,
				FeaturedUntil: slot.FeaturedUntil,
				VotesCount:    int(votes.Int64),
				CreatedAt:     createdAt.Time,
			}
		}
	}
	return slot, nil
}

func (r *FeaturedSlotRepository) Swap(ctx context.Context, swap model.SlotSwap) (int64, error) {
	var balance int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE featured_slot SET video_id = $1, current_bid = $2, featured_until = $3, version = version + 1, updated_at = $4 WHERE id = 1 AND version = $5`,
			swap.VideoID, swap.Bid, swap.FeaturedUntil, swap.At, swap.ExpectedVersion)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return model.ErrSlotChanged
		}

		// Evict whoever still carries the flag, expired or not.
		if _, err := tx.ExecContext(ctx,
			`UPDATE videos SET is_featured = false, is_public = false, updated_at = $1 WHERE is_featured = true AND id <> $2`,
			swap.At, swap.VideoID); err != nil {
			return err
		}

		balance, err = applyEntry(ctx, tx, model.LedgerEntry{
			AccountID:   swap.BidderID,
			Amount:      -swap.Bid,
			Kind:        model.EntryVideoGeneration,
			Description: swap.Description,
			CreatedAt:   swap.At,
		})
		if err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE videos SET is_featured = true, is_public = true, current_bid = $1, featured_until = $2, updated_at = $3 WHERE id = $4`,
			swap.Bid, swap.FeaturedUntil, swap.At, swap.VideoID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return model.ErrVideoNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}
