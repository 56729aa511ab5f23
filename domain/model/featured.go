package model

import "time"

// FeaturedSlot is the single contested placement. Version increments on
// every successful takeover and is the compare-and-swap key.
type FeaturedSlot struct {
	Version       int64      `json:"version"`
	VideoID       *int64     `json:"video_id,omitempty"`
	CurrentBid    int64      `json:"current_bid"`
	FeaturedUntil *time.Time `json:"featured_until,omitempty"`
	Video         *Video     `json:"video,omitempty"`
}

// IsExpired reports whether the slot is logically empty at now. The stored
// flags of an expired holder stay set until the next winning bid clears them.
func IsExpired(slot FeaturedSlot, now time.Time) bool {
	if slot.VideoID == nil || slot.FeaturedUntil == nil {
		return true
	}
	return !slot.FeaturedUntil.After(now)
}

// MinimumBid is base while the slot is empty or expired and the holder's
// bid plus one otherwise.
func MinimumBid(slot FeaturedSlot, now time.Time, base int64) int64 {
	if IsExpired(slot, now) {
		return base
	}
	return slot.CurrentBid + 1
}

// SlotSwap describes one takeover of the featured slot.
type SlotSwap struct {
	ExpectedVersion int64
	VideoID         int64
	BidderID        int64
	Bid             int64
	FeaturedUntil   time.Time
	Description     string
	At              time.Time
}

type FeaturedState struct {
	HasFeatured   bool   `json:"has_featured"`
	MinBid        int64  `json:"min_bid"`
	FeaturedVideo *Video `json:"featured_video,omitempty"`
}

type BidResult struct {
	VideoID        int64     `json:"video_id"`
	Bid            int64     `json:"bid"`
	NewBalance     int64     `json:"new_balance"`
	FeaturedUntil  time.Time `json:"featured_until"`
	EvictedVideoID *int64    `json:"evicted_video_id,omitempty"`
}
