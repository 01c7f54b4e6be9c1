package scoring

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Miandari/dailygrit/pkg/models"
)

// Validate checks metric definitions strictly. The engine itself never
// calls this; services run it before persisting scoring configuration.
// Every returned error matches models.ErrValidation.
func Validate(metrics []models.MetricDefinition) error {
	if len(metrics) == 0 {
		return models.ValidationError("metrics", "at least one metric is required")
	}

	var errs []error
	seen := make(map[string]struct{}, len(metrics))

	for i, m := range metrics {
		field := fmt.Sprintf("metrics[%d]", i)

		if strings.TrimSpace(m.ID) == "" {
			errs = append(errs, models.ValidationError(field+".id", "is required"))
		} else if _, dup := seen[m.ID]; dup {
			errs = append(errs, models.ValidationError(field+".id", "duplicate id %q", m.ID))
		} else {
			seen[m.ID] = struct{}{}
		}

		if n := utf8.RuneCountInString(strings.TrimSpace(m.Name)); n == 0 || n > models.MaxMetricNameLength {
			errs = append(errs, models.ValidationError(field+".name", "must be 1 to %d characters", models.MaxMetricNameLength))
		}

		if !knownType(m.Type) {
			errs = append(errs, models.ValidationError(field+".type", "unknown type %q", m.Type))
		}

		if m.Points != nil && *m.Points < 0 {
			errs = append(errs, models.ValidationError(field+".points", "must not be negative"))
		}

		switch m.Mode() {
		case models.ScoringBinary, models.ScoringScaled:
		case models.ScoringTiered:
			if len(m.Tiers) == 0 {
				errs = append(errs, models.ValidationError(field+".tiers", "tiered scoring needs at least one tier"))
			}
			for j, tier := range m.Tiers {
				if tier.Points < 0 {
					errs = append(errs, models.ValidationError(fmt.Sprintf("%s.tiers[%d].points", field, j), "must not be negative"))
				}
			}
		default:
			errs = append(errs, models.ValidationError(field+".scoring_mode", "unknown mode %q", m.ScoringMode))
		}

		switch m.Direction() {
		case models.ThresholdMin, models.ThresholdMax:
		default:
			errs = append(errs, models.ValidationError(field+".threshold_type", "must be min or max"))
		}
	}

	return errors.Join(errs...)
}

// ValidateBonus checks the bonus amounts
func ValidateBonus(bonus models.BonusConfig) error {
	var errs []error
	if bonus.StreakBonusPoints != nil && *bonus.StreakBonusPoints < 0 {
		errs = append(errs, models.ValidationError("streak_bonus_points", "must not be negative"))
	}
	if bonus.PerfectDayBonusPoints != nil && *bonus.PerfectDayBonusPoints < 0 {
		errs = append(errs, models.ValidationError("perfect_day_bonus_points", "must not be negative"))
	}
	return errors.Join(errs...)
}

func knownType(t models.MetricType) bool {
	switch t {
	case models.MetricBoolean, models.MetricNumber, models.MetricDuration,
		models.MetricChoice, models.MetricText, models.MetricFile, models.MetricCombined:
		return true
	}
	return false
}
