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

type FeaturedConfig struct {
	MinBid      int64
	Duration    time.Duration
	MaxAttempts int
}

type IFeaturedUsecase interface {
	PlaceBid(ctx context.Context, videoID, bidderID, amount int64) (model.BidResult, error)
	Unpublish(ctx context.Context, videoID, ownerID int64) (model.Video, error)
	State(ctx context.Context) (model.FeaturedState, error)
}

type featuredUsecase struct {
	slots  repository.IFeaturedSlot
	videos repository.IVideo
	ledger repository.ILedger
	events repository.IEventPublisher
	cfg    FeaturedConfig
	now    func() time.Time
}

func NewFeaturedUsecase(
	slots repository.IFeaturedSlot,
	videos repository.IVideo,
	ledger repository.ILedger,
	events repository.IEventPublisher,
	cfg FeaturedConfig,
	now func() time.Time,
) IFeaturedUsecase {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &featuredUsecase{slots: slots, videos: videos, ledger: ledger, events: events, cfg: cfg, now: now}
}

// PlaceBid installs videoID in the featured slot. The slot is re-read and the
// bid re-validated on every attempt; a lost compare-and-swap is retried up to
// MaxAttempts times before surfacing as a conflict.
func (u *featuredUsecase) PlaceBid(ctx context.Context, videoID, bidderID, amount int64) (model.BidResult, error) {
	log := logger.WithRequest(ctx).WithFields(map[string]interface{}{
		"video_id":  videoID,
		"bidder_id": bidderID,
		"bid":       amount,
	})

	video, err := u.videos.GetByID(ctx, videoID)
	if err != nil {
		return model.BidResult{}, err
	}
	if video.UserID != bidderID {
		metrics.FeaturedBidsTotal.WithLabelValues("not_owner").Inc()
		return model.BidResult{}, fmt.Errorf("video %d: %w", videoID, model.ErrNotOwner)
	}

	for attempt := 1; ; attempt++ {
		slot, err := u.slots.Current(ctx)
		if err != nil {
			return model.BidResult{}, err
		}
		now := u.now()
		minBid := model.MinimumBid(slot, now, u.cfg.MinBid)
		if amount < minBid {
			metrics.FeaturedBidsTotal.WithLabelValues("too_low").Inc()
			log.WithField("min_bid", minBid).Warn("bid below minimum")
			return model.BidResult{}, &model.BidTooLowError{Bid: amount, MinBid: minBid}
		}

		account, err := u.ledger.GetAccount(ctx, bidderID)
		if err != nil {
			return model.BidResult{}, err
		}
		if account.Balance < amount {
			metrics.FeaturedBidsTotal.WithLabelValues("insufficient_funds").Inc()
			log.WithField("balance", account.Balance).Warn("bid exceeds balance")
			return model.BidResult{}, &model.InsufficientFundsError{Balance: account.Balance, Required: amount}
		}

		until := now.Add(u.cfg.Duration)
		balance, err := u.slots.Swap(ctx, model.SlotSwap{
			ExpectedVersion: slot.Version,
			VideoID:         videoID,
			BidderID:        bidderID,
			Bid:             amount,
			FeaturedUntil:   until,
			Description:     fmt.Sprintf("featured placement bid for video %d", videoID),
			At:              now,
		})
		if errors.Is(err, model.ErrSlotChanged) && attempt < u.cfg.MaxAttempts {
			log.WithField("attempt", attempt).Info("featured slot changed, retrying bid")
			continue
		}
		if err != nil {
			result := "error"
			if errors.Is(err, model.ErrConflict) {
				result = "conflict"
			} else if errors.Is(err, model.ErrInsufficientFunds) {
				result = "insufficient_funds"
			}
			metrics.FeaturedBidsTotal.WithLabelValues(result).Inc()
			log.WithField("error", err).Warn("featured bid failed")
			return model.BidResult{}, err
		}

		res := model.BidResult{VideoID: videoID, Bid: amount, NewBalance: balance, FeaturedUntil: until}
		if slot.VideoID != nil && *slot.VideoID != videoID {
			evicted := *slot.VideoID
			res.EvictedVideoID = &evicted
		}
		metrics.FeaturedBidsTotal.WithLabelValues("accepted").Inc()
		metrics.LedgerEntriesTotal.WithLabelValues(string(model.EntryVideoGeneration)).Inc()
		log.WithField("featured_until", until).WithField("new_balance", balance).Info("featured slot taken")
		u.publish(ctx, slot, res, bidderID, now)
		return res, nil
	}
}

func (u *featuredUsecase) publish(ctx context.Context, previous model.FeaturedSlot, res model.BidResult, bidderID int64, at time.Time) {
	if u.events == nil {
		return
	}
	if res.EvictedVideoID != nil {
		var ownerID int64
		if previous.Video != nil {
			ownerID = previous.Video.UserID
		}
		_ = u.events.Publish(ctx, model.NewEvent(model.EventFeaturedEvicted, ownerID, at, map[string]interface{}{
			"video_id": *res.EvictedVideoID,
			"bid":      previous.CurrentBid,
		}))
	}
	_ = u.events.Publish(ctx, model.NewEvent(model.EventFeaturedChanged, bidderID, at, map[string]interface{}{
		"video_id":       res.VideoID,
		"bid":            res.Bid,
		"featured_until": res.FeaturedUntil,
		"min_bid":        res.Bid + 1,
	}))
}

// Unpublish hides the video from the gallery. The featured flag is left as is
// and no tokens are returned.
func (u *featuredUsecase) Unpublish(ctx context.Context, videoID, ownerID int64) (model.Video, error) {
	video, err := u.videos.GetByID(ctx, videoID)
	if err != nil {
		return model.Video{}, err
	}
	if video.UserID != ownerID {
		return model.Video{}, fmt.Errorf("video %d: %w", videoID, model.ErrNotOwner)
	}
	return u.videos.SetPublic(ctx, videoID, false)
}

// State reports the slot with expiry applied. It never writes.
func (u *featuredUsecase) State(ctx context.Context) (model.FeaturedState, error) {
	slot, err := u.slots.Current(ctx)
	if err != nil {
		return model.FeaturedState{}, err
	}
	now := u.now()
	if model.IsExpired(slot, now) {
		return model.FeaturedState{HasFeatured: false, MinBid: u.cfg.MinBid}, nil
	}
	return model.FeaturedState{
		HasFeatured:   true,
		MinBid:        model.MinimumBid(slot, now, u.cfg.MinBid),
		FeaturedVideo: slot.Video,
	}, nil
}
