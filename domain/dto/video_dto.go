package dto

import (
	"time"

	"token-platform/domain/model"
)

type GenerateVideoRequest struct {
	Title  string `json:"title" binding:"required"`
	Prompt string `json:"prompt"`
}

type PlaceBidRequest struct {
	BidAmount int64 `json:"bid_amount" binding:"required"`
}

type VideoStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PublicVideo is a gallery row; Featured already accounts for expiry.
type PublicVideo struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	UserID        int64      `json:"user_id"`
	VotesCount    int        `json:"votes_count"`
	Featured      bool       `json:"featured"`
	CurrentBid    int64      `json:"current_bid"`
	FeaturedUntil *time.Time `json:"featured_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func NewPublicVideo(v model.Video, now time.Time) PublicVideo {
	pv := PublicVideo{
		ID:         v.ID,
		Title:      v.Title,
		UserID:     v.UserID,
		VotesCount: v.VotesCount,
		Featured:   v.FeaturedNow(now),
		CreatedAt:  v.CreatedAt,
	}
	if pv.Featured {
		pv.CurrentBid = v.CurrentBid
		pv.FeaturedUntil = v.FeaturedUntil
	}
	return pv
}
