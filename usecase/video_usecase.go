package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"token-platform/domain/dto"
	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"
	"token-platform/infrastructure/metrics"
)

type IVideoUsecase interface {
	Generate(ctx context.Context, ownerID int64, req dto.GenerateVideoRequest) (model.Video, int64, error)
	ListMine(ctx context.Context, ownerID int64) ([]model.Video, error)
	ListPublic(ctx context.Context) ([]dto.PublicVideo, error)
	MarkStatus(ctx context.Context, videoID int64, status string) (model.Video, error)
}

type videoUsecase struct {
	videos         repository.IVideo
	referrals      IReferralUsecase
	events         repository.IEventPublisher
	tokensPerVideo int64
	now            func() time.Time
}

func NewVideoUsecase(
	videos repository.IVideo,
	referrals IReferralUsecase,
	events repository.IEventPublisher,
	tokensPerVideo int64,
	now func() time.Time,
) IVideoUsecase {
	return &videoUsecase{videos: videos, referrals: referrals, events: events, tokensPerVideo: tokensPerVideo, now: now}
}

// Generate stores a pending video and charges for it in one step. The spend
// then counts toward the owner's referrer for the current week.
func (u *videoUsecase) Generate(ctx context.Context, ownerID int64, req dto.GenerateVideoRequest) (model.Video, int64, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Video{}, 0, model.NewValidationError("title is required")
	}
	now := u.now()
	video := model.Video{
		UserID:     ownerID,
		Title:      title,
		Prompt:     req.Prompt,
		Status:     model.VideoPending,
		TokensCost: u.tokensPerVideo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	charge := model.LedgerEntry{
		AccountID:   ownerID,
		Amount:      -u.tokensPerVideo,
		Kind:        model.EntryVideoGeneration,
		Description: fmt.Sprintf("video generation: %s", title),
		CreatedAt:   now,
	}

	log := logger.WithRequest(ctx).WithField("user_id", ownerID)
	created, balance, err := u.videos.CreateCharged(ctx, video, charge)
	if err != nil {
		log.WithField("error", err).Warn("video generation not charged")
		return model.Video{}, 0, err
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(model.EntryVideoGeneration)).Inc()
	log.WithField("video_id", created.ID).WithField("new_balance", balance).Info("video generation charged")

	if u.referrals != nil && u.tokensPerVideo > 0 {
		if err := u.referrals.RecordSpend(ctx, ownerID, u.tokensPerVideo); err != nil {
			log.WithField("error", err).Error("referral spend not recorded")
		}
	}
	if u.events != nil {
		_ = u.events.Publish(ctx, model.NewEvent(model.EventVideoGenerationCharged, ownerID, now, map[string]interface{}{
			"video_id": created.ID,
			"cost":     u.tokensPerVideo,
		}))
	}
	return created, balance, nil
}

func (u *videoUsecase) ListMine(ctx context.Context, ownerID int64) ([]model.Video, error) {
	return u.videos.ListByOwner(ctx, ownerID)
}

func (u *videoUsecase) ListPublic(ctx context.Context) ([]dto.PublicVideo, error) {
	videos, err := u.videos.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	now := u.now()
	out := make([]dto.PublicVideo, 0, len(videos))
	for _, v := range videos {
		out = append(out, dto.NewPublicVideo(v, now))
	}
	return out, nil
}

func (u *videoUsecase) MarkStatus(ctx context.Context, videoID int64, status string) (model.Video, error) {
	s := model.VideoStatus(status)
	if s != model.VideoCompleted && s != model.VideoFailed {
		return model.Video{}, model.NewValidationError("status must be completed or failed, got %q", status)
	}
	video, err := u.videos.SetStatus(ctx, videoID, s)
	if err != nil {
		return model.Video{}, err
	}
	logger.WithRequest(ctx).WithField("video_id", videoID).WithField("status", s).Info("video status updated")
	return video, nil
}
