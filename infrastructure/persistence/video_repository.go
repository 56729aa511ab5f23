package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	"gorm.io/gorm"
)

// VideoRepository reads and flags videos through gorm. Creation charges the
// owner, so it runs on the raw pool inside a ledger transaction.
type VideoRepository struct {
	db   *sql.DB
	gorm *gorm.DB
}

func NewVideoRepository(db *sql.DB, gdb *gorm.DB) repository.IVideo {
	return &VideoRepository{db: db, gorm: gdb}
}

func (r *VideoRepository) GetByID(ctx context.Context, id int64) (model.Video, error) {
	var v model.Video
	err := r.gorm.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return v, model.ErrVideoNotFound
	}
	return v, err
}

func (r *VideoRepository) ListByOwner(ctx context.Context, userID int64) ([]model.Video, error) {
	videos := make([]model.Video, 0)
	err := r.gorm.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&videos).Error
	return videos, err
}

func (r *VideoRepository) ListPublic(ctx context.Context) ([]model.Video, error) {
	videos := make([]model.Video, 0)
	err := r.gorm.WithContext(ctx).
		Where("is_public = ? AND status = ?", true, model.VideoCompleted).
		Order("votes_count DESC, created_at DESC").
		Find(&videos).Error
	return videos, err
}

func (r *VideoRepository) CreateCharged(ctx context.Context, video model.Video, charge model.LedgerEntry) (model.Video, int64, error) {
	now := time.Now().UTC()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = video.CreatedAt
	if video.Status == "" {
		video.Status = model.VideoPending
	}

	var balance int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO videos (user_id, title, prompt, status, is_public, is_featured, current_bid, votes_count, tokens_cost, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, false, false, 0, 0, $5, $6, $6) RETURNING id`,
			video.UserID, video.Title, video.Prompt, string(video.Status), video.TokensCost, video.CreatedAt).Scan(&video.ID)
		if err != nil {
			return err
		}
		charge.AccountID = video.UserID
		if charge.CreatedAt.IsZero() {
			charge.CreatedAt = video.CreatedAt
		}
		balance, err = applyEntry(ctx, tx, charge)
		return err
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", video.UserID).Warn("create charged video failed")
		return model.Video{}, 0, err
	}
	return video, balance, nil
}

func (r *VideoRepository) SetPublic(ctx context.Context, id int64, public bool) (model.Video, error) {
	return r.update(ctx, id, map[string]interface{}{"is_public": public})
}

func (r *VideoRepository) SetStatus(ctx context.Context, id int64, status model.VideoStatus) (model.Video, error) {
	return r.update(ctx, id, map[string]interface{}{"status": string(status)})
}

func (r *VideoRepository) update(ctx context.Context, id int64, fields map[string]interface{}) (model.Video, error) {
	fields["updated_at"] = time.Now().UTC()
	res := r.gorm.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return model.Video{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Video{}, model.ErrVideoNotFound
	}
	return r.GetByID(ctx, id)
}
