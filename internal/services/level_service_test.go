package services

import (
	"testing"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		earnings   float64
		wantLevel  int
		wantFeePct float64
	}{
		{0, 1, 30},
		{999.99, 1, 30},
		{1000, 2, 27},
		{9999.99, 2, 27},
		{10000, 3, 25},
		{50000, 4, 22},
		{249999.99, 4, 22},
		{250000, 5, 20},
		{1000000, 5, 20},
	}

	for _, c := range cases {
		tier := TierFor(c.earnings)
		if tier.Level != c.wantLevel {
			t.Errorf("TierFor(%v): expected level %d, got %d", c.earnings, c.wantLevel, tier.Level)
		}
		if tier.FeePercent != c.wantFeePct {
			t.Errorf("TierFor(%v): expected fee %v, got %v", c.earnings, c.wantFeePct, tier.FeePercent)
		}
	}
}

func TestTierFeeDecreasesWithThreshold(t *testing.T) {
	tiers := FeeTiers()
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Threshold <= tiers[i-1].Threshold {
			t.Errorf("tier %d threshold %v not above tier %d threshold %v", i+1, tiers[i].Threshold, i, tiers[i-1].Threshold)
		}
		if tiers[i].FeePercent >= tiers[i-1].FeePercent {
			t.Errorf("tier %d fee %v not below tier %d fee %v", i+1, tiers[i].FeePercent, i, tiers[i-1].FeePercent)
		}
	}
}

func TestLevelMonotonicOverEarnings(t *testing.T) {
	// Earnings only increase in the settlement flow, so the derived level
	// must never step down across a growing sequence.
	earnings := []float64{0, 150, 999, 1000, 4000, 10000, 49999, 50000, 250000, 500000}
	prev := 0
	for _, e := range earnings {
		level := TierFor(e).Level
		if level < prev {
			t.Fatalf("level decreased from %d to %d at earnings %v", prev, level, e)
		}
		prev = level
	}
}

func TestProgressToNext(t *testing.T) {
	// Halfway through tier 2 (1,000 -> 10,000).
	percent, remaining := ProgressToNext(5500, 2)
	if percent != 50 {
		t.Errorf("expected 50%% progress, got %v", percent)
	}
	if remaining != 4500 {
		t.Errorf("expected 4500 remaining, got %v", remaining)
	}
}

func TestProgressToNextClamped(t *testing.T) {
	// Earnings below the current threshold clamp to zero.
	percent, _ := ProgressToNext(500, 2)
	if percent != 0 {
		t.Errorf("expected 0%% progress, got %v", percent)
	}

	// Earnings past the next threshold clamp to 100 with nothing remaining.
	percent, remaining := ProgressToNext(20000, 2)
	if percent != 100 {
		t.Errorf("expected 100%% progress, got %v", percent)
	}
	if remaining != 0 {
		t.Errorf("expected 0 remaining, got %v", remaining)
	}
}

func TestProgressToNextTopTier(t *testing.T) {
	percent, remaining := ProgressToNext(300000, 5)
	if percent != 100 || remaining != 0 {
		t.Errorf("top tier should report 100%%/0, got %v/%v", percent, remaining)
	}
}
