package models

// MetricType is the kind of value a metric collects
type MetricType string

const (
	MetricBoolean  MetricType = "boolean"
	MetricNumber   MetricType = "number"
	MetricDuration MetricType = "duration" // minutes, integer
	MetricChoice   MetricType = "choice"
	MetricText     MetricType = "text"
	MetricFile     MetricType = "file"

	// MetricCombined is reserved. It is accepted in stored definitions but never scored.
	MetricCombined MetricType = "combined"
)

// ScoringMode selects how numeric metrics turn a value into points
type ScoringMode string

const (
	ScoringBinary ScoringMode = "binary"
	ScoringScaled ScoringMode = "scaled"
	ScoringTiered ScoringMode = "tiered"
)

// ThresholdType is the comparison direction for thresholds
type ThresholdType string

const (
	ThresholdMin ThresholdType = "min" // value must reach the threshold
	ThresholdMax ThresholdType = "max" // value must stay at or under the threshold
)

// Metric defaults
const (
	DefaultMetricPoints    = 1
	DefaultBinaryThreshold = 0.0
	DefaultScaledThreshold = 100.0
	DefaultStreakBonus     = 5
	DefaultPerfectDayBonus = 10
	MaxMetricNameLength    = 100
)

// ScoreTier is one step of a tiered metric
type ScoreTier struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Points    int     `json:"points" yaml:"points"`
}

// MetricDefinition describes one trackable field of a challenge.
// The JSON shape matches the `metrics` column of the challenges table.
type MetricDefinition struct {
	ID            string                 `json:"id" yaml:"id"`
	Name          string                 `json:"name" yaml:"name"`
	Type          MetricType             `json:"type" yaml:"type"`
	Required      bool                   `json:"required" yaml:"required"`
	Order         int                    `json:"order" yaml:"order"`
	Config        map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"` // input hints only, ignored by scoring
	Points        *int                   `json:"points,omitempty" yaml:"points,omitempty"`
	ScoringMode   ScoringMode            `json:"scoring_mode,omitempty" yaml:"scoring_mode,omitempty"`
	Threshold     *float64               `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	ThresholdType ThresholdType          `json:"threshold_type,omitempty" yaml:"threshold_type,omitempty"`
	Tiers         []ScoreTier            `json:"tiers,omitempty" yaml:"tiers,omitempty"`
}

// MaxPoints returns the configured points, or the default when unset or zero
func (m MetricDefinition) MaxPoints() int {
	if m.Points == nil || *m.Points == 0 {
		return DefaultMetricPoints
	}
	return *m.Points
}

// Mode returns the scoring mode, binary when unset
func (m MetricDefinition) Mode() ScoringMode {
	if m.ScoringMode == "" {
		return ScoringBinary
	}
	return m.ScoringMode
}

// Direction returns the threshold direction, min when unset
func (m MetricDefinition) Direction() ThresholdType {
	if m.ThresholdType == "" {
		return ThresholdMin
	}
	return m.ThresholdType
}

// BonusConfig holds the challenge-level bonus settings
type BonusConfig struct {
	EnableStreakBonus     bool `json:"enable_streak_bonus" yaml:"enable_streak_bonus" db:"enable_streak_bonus"`
	StreakBonusPoints     *int `json:"streak_bonus_points,omitempty" yaml:"streak_bonus_points,omitempty" db:"streak_bonus_points"`
	EnablePerfectDayBonus bool `json:"enable_perfect_day_bonus" yaml:"enable_perfect_day_bonus" db:"enable_perfect_day_bonus"`
	PerfectDayBonusPoints *int `json:"perfect_day_bonus_points,omitempty" yaml:"perfect_day_bonus_points,omitempty" db:"perfect_day_bonus_points"`
}

// StreakBonusPerDay returns the per-streak-day bonus, 5 when unset or zero
func (b BonusConfig) StreakBonusPerDay() int {
	if b.StreakBonusPoints == nil || *b.StreakBonusPoints == 0 {
		return DefaultStreakBonus
	}
	return *b.StreakBonusPoints
}

// PerfectDayBonus returns the flat perfect-day bonus, 10 when unset or zero
func (b BonusConfig) PerfectDayBonus() int {
	if b.PerfectDayBonusPoints == nil || *b.PerfectDayBonusPoints == 0 {
		return DefaultPerfectDayBonus
	}
	return *b.PerfectDayBonusPoints
}

// IntPtr is a helper for optional integer fields
func IntPtr(v int) *int {
	return &v
}

// FloatPtr is a helper for optional float fields
func FloatPtr(v float64) *float64 {
	return &v
}
