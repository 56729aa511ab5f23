package model

import (
	"sort"
	"time"
)

type ReferralEdge struct {
	ID         int64     `json:"id"`
	ReferrerID int64     `json:"referrer_id"`
	ReferredID int64     `json:"referred_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type WeeklyReferralStat struct {
	ID                  int64     `json:"id"`
	ReferrerID          int64     `json:"referrer_id"`
	WeekStart           time.Time `json:"week_start"`
	WeekEnd             time.Time `json:"week_end"`
	NewReferrals        int       `json:"new_referrals"`
	TotalSpending       int64     `json:"total_spending"`
	LeaderboardPosition *int      `json:"leaderboard_position,omitempty"`
	PayoutPercent       *int      `json:"payout_percent,omitempty"`
	PayoutAmount        *int64    `json:"payout_amount,omitempty"`
	IsPaid              bool      `json:"is_paid"`
}

// Week spans Monday 00:00:00 to Sunday 23:59:59.999 in its location.
type Week struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeekOf returns the week containing t, evaluated in loc.
func WeekOf(t time.Time, loc *time.Location) Week {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
	return Week{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Millisecond)}
}

// PreviousWeek returns the last fully completed week before the one containing t.
func PreviousWeek(t time.Time, loc *time.Location) Week {
	current := WeekOf(t, loc)
	return WeekOf(current.Start.AddDate(0, 0, -1), loc)
}

// RankedStat pairs a stat row with its dense leaderboard position.
type RankedStat struct {
	Stat     WeeklyReferralStat
	Position int
}

// DenseRank orders stats by NewReferrals descending (referrer id breaks
// ordering ties) and assigns positions 1,1,2,3: equal counts share a
// position and the next distinct count gets the previous position plus one.
func DenseRank(stats []WeeklyReferralStat) []RankedStat {
	sorted := make([]WeeklyReferralStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].NewReferrals != sorted[j].NewReferrals {
			return sorted[i].NewReferrals > sorted[j].NewReferrals
		}
		return sorted[i].ReferrerID < sorted[j].ReferrerID
	})

	out := make([]RankedStat, 0, len(sorted))
	position := 0
	previous := -1
	for _, s := range sorted {
		if s.NewReferrals != previous {
			position++
			previous = s.NewReferrals
		}
		out = append(out, RankedStat{Stat: s, Position: position})
	}
	return out
}

// Settlement finalizes one weekly stat row and credits its referrer.
type Settlement struct {
	StatID      int64
	ReferrerID  int64
	Position    int
	Percent     int
	Amount      int64
	Description string
	At          time.Time
}

type Payout struct {
	ReferrerID    int64 `json:"referrer_id"`
	Position      int   `json:"position"`
	NewReferrals  int   `json:"new_referrals"`
	TotalSpending int64 `json:"total_spending"`
	Percent       int   `json:"percent"`
	PayoutAmount  int64 `json:"payout_amount"`
	NewBalance    int64 `json:"new_balance"`
}

type PayoutFailure struct {
	ReferrerID int64  `json:"referrer_id"`
	StatID     int64  `json:"stat_id"`
	Error      string `json:"error"`
}

type PayoutResult struct {
	WeekStart    time.Time       `json:"week_start"    bson:"week_start"`
	WeekEnd      time.Time       `json:"week_end"      bson:"week_end"`
	PaidCount    int             `json:"paid_count"    bson:"paid_count"`
	SkippedCount int             `json:"skipped_count" bson:"skipped_count"`
	Payouts      []Payout        `json:"payouts"       bson:"payouts"`
	Failures     []PayoutFailure `json:"failures"      bson:"failures"`
	RanAt        time.Time       `json:"ran_at"        bson:"ran_at"`
}

type LeaderboardEntry struct {
	ReferrerID    int64 `json:"referrer_id"`
	Position      int   `json:"position"`
	NewReferrals  int   `json:"new_referrals"`
	TotalSpending int64 `json:"total_spending"`
	Percent       int   `json:"percent"`
}

type Leaderboard struct {
	WeekStart time.Time          `json:"week_start"`
	WeekEnd   time.Time          `json:"week_end"`
	Entries   []LeaderboardEntry `json:"entries"`
}

type PayoutHistory struct {
	CurrentWeek *WeeklyReferralStat  `json:"current_week"`
	History     []WeeklyReferralStat `json:"history"`
}
