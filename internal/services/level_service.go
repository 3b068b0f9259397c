package services

// FeeTier maps a cumulative-earnings threshold to the platform fee a seller
// pays at that level. The table is static, ordered by threshold, and never
// mutated at runtime.
type FeeTier struct {
	Level      int     `json:"level"`
	Name       string  `json:"name"`
	Threshold  float64 `json:"threshold"`
	FeePercent float64 `json:"feePercent"`
}

var feeTiers = []FeeTier{
	{Level: 1, Name: "Starter", Threshold: 0, FeePercent: 30},
	{Level: 2, Name: "Rising", Threshold: 1000, FeePercent: 27},
	{Level: 3, Name: "Established", Threshold: 10000, FeePercent: 25},
	{Level: 4, Name: "Pro", Threshold: 50000, FeePercent: 22},
	{Level: 5, Name: "Elite", Threshold: 250000, FeePercent: 20},
}

// FeeTiers returns a copy of the tier table.
func FeeTiers() []FeeTier {
	tiers := make([]FeeTier, len(feeTiers))
	copy(tiers, feeTiers)
	return tiers
}

// TierFor returns the highest tier whose threshold is at or below
// totalEarnings. Within the settlement flow earnings only increase, so the
// level a seller derives from this is non-decreasing.
func TierFor(totalEarnings float64) FeeTier {
	tier := feeTiers[0]
	for _, t := range feeTiers {
		if totalEarnings >= t.Threshold {
			tier = t
		}
	}
	return tier
}

// ProgressToNext reports how far along the current tier a seller is, as a
// percentage of the earnings span between the current threshold and the
// next, clamped to [0,100]. The top tier always reports 100% with zero
// remaining.
func ProgressToNext(totalEarnings float64, currentLevel int) (percent float64, remaining float64) {
	if currentLevel < 1 {
		currentLevel = 1
	}
	if currentLevel >= len(feeTiers) {
		return 100, 0
	}

	current := feeTiers[currentLevel-1]
	next := feeTiers[currentLevel]

	span := next.Threshold - current.Threshold
	percent = (totalEarnings - current.Threshold) / span * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	remaining = next.Threshold - totalEarnings
	if remaining < 0 {
		remaining = 0
	}
	return percent, remaining
}
