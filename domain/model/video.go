package model

import "time"

type VideoStatus string

const (
	VideoPending   VideoStatus = "pending"
	VideoCompleted VideoStatus = "completed"
	VideoFailed    VideoStatus = "failed"
)

type Video struct {
	ID            int64       `json:"id"             gorm:"primaryKey"`
	UserID        int64       `json:"user_id"        gorm:"index"`
	Title         string      `json:"title"`
	Prompt        string      `json:"prompt"`
	Status        VideoStatus `json:"status"`
	IsPublic      bool        `json:"is_public"`
	IsFeatured    bool        `json:"is_featured"`
	CurrentBid    int64       `json:"current_bid"`
	FeaturedUntil *time.Time  `json:"featured_until,omitempty"`
	VotesCount    int         `json:"votes_count"`
	TokensCost    int64       `json:"tokens_cost"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (Video) TableName() string { return "videos" }

// FeaturedNow reports whether the video holds an unexpired featured placement.
func (v Video) FeaturedNow(now time.Time) bool {
	return v.IsFeatured && v.FeaturedUntil != nil && v.FeaturedUntil.After(now)
}
