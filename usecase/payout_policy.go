package usecase

type IPayoutPolicy interface {
	// Percent must be deterministic and return a value in 0..100.
	Percent(position, newReferrals int) int
}

type VolumeBonus struct {
	MinReferrals int
	Percent      int
}

// TieredPayoutPolicy pays a fixed percent per leaderboard position plus the
// largest volume bonus the referrer qualifies for.
type TieredPayoutPolicy struct {
	PositionPercents []int
	DefaultPercent   int
	VolumeBonus      []VolumeBonus
	MaxPercent       int
}

func (p TieredPayoutPolicy) Percent(position, newReferrals int) int {
	percent := p.DefaultPercent
	if position >= 1 && position <= len(p.PositionPercents) {
		percent = p.PositionPercents[position-1]
	}

	bonus := 0
	for _, b := range p.VolumeBonus {
		if newReferrals >= b.MinReferrals && b.Percent > bonus {
			bonus = b.Percent
		}
	}
	percent += bonus

	if p.MaxPercent > 0 && percent > p.MaxPercent {
		percent = p.MaxPercent
	}
	return clampPercent(percent)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// payoutAmount is floor(totalSpending * percent / 100).
func payoutAmount(totalSpending int64, percent int) int64 {
	if totalSpending <= 0 || percent <= 0 {
		return 0
	}
	return totalSpending * int64(percent) / 100
}
