package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventFeaturedChanged        = "featured.changed"
	EventFeaturedEvicted        = "featured.evicted"
	EventReferralPayoutSettled  = "referral.payout_settled"
	EventVideoGenerationCharged = "video.generation_charged"
)

// Event is the envelope published to the message bus and the realtime hub.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	UserID     int64                  `json:"user_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

func NewEvent(eventType string, userID int64, at time.Time, payload map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}
