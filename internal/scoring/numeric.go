package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/Miandari/dailygrit/pkg/models"
)

// NumericPoints scores a number or duration value.
//
//	binary: full points when value >= threshold (min) or <= threshold (max); threshold defaults to 0
//	scaled: proportional to value/threshold (min) or 1-value/threshold (max); threshold defaults to 100
//	tiered: points of the best tier reached
//
// Unknown modes score 0.
func NumericPoints(
	value float64,
	maxPoints int,
	mode models.ScoringMode,
	threshold *float64,
	direction models.ThresholdType,
	tiers []models.ScoreTier,
) int {
	switch mode {
	case models.ScoringBinary:
		return binaryPoints(value, maxPoints, thresholdOr(threshold, models.DefaultBinaryThreshold), direction)
	case models.ScoringScaled:
		return scaledPoints(value, maxPoints, thresholdOr(threshold, models.DefaultScaledThreshold), direction)
	case models.ScoringTiered:
		return tieredPoints(value, direction, tiers)
	default:
		return 0
	}
}

func thresholdOr(threshold *float64, def float64) float64 {
	if threshold == nil {
		return def
	}
	return *threshold
}

func binaryPoints(value float64, maxPoints int, target float64, direction models.ThresholdType) int {
	if direction == models.ThresholdMax {
		if value <= target {
			return maxPoints
		}
		return 0
	}
	if value >= target {
		return maxPoints
	}
	return 0
}

func scaledPoints(value float64, maxPoints int, target float64, direction models.ThresholdType) int {
	if direction == models.ThresholdMax {
		// Full points at 0, nothing at or past the cap.
		if value >= target {
			return 0
		}
		pct := 1 - value/target
		if math.IsNaN(pct) {
			return 0
		}
		return roundHalfUp(float64(maxPoints) * math.Max(0, math.Min(1, pct)))
	}

	if target <= 0 {
		return 0
	}
	pct := math.Min(value/target, 1)
	if pct <= 0 {
		return 0
	}
	return roundHalfUp(float64(maxPoints) * pct)
}

func tieredPoints(value float64, direction models.ThresholdType, tiers []models.ScoreTier) int {
	if len(tiers) == 0 {
		return 0
	}

	sorted := slices.Clone(tiers)
	if direction == models.ThresholdMax {
		// Lowest cap the value still fits under wins.
		slices.SortStableFunc(sorted, func(a, b models.ScoreTier) int {
			return cmp.Compare(a.Threshold, b.Threshold)
		})
		for _, tier := range sorted {
			if value <= tier.Threshold {
				return tier.Points
			}
		}
		return 0
	}

	// Highest threshold reached wins.
	slices.SortStableFunc(sorted, func(a, b models.ScoreTier) int {
		return cmp.Compare(b.Threshold, a.Threshold)
	})
	for _, tier := range sorted {
		if value >= tier.Threshold {
			return tier.Points
		}
	}
	return 0
}
