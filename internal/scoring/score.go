package scoring

import (
	"github.com/Miandari/dailygrit/pkg/models"
)

// DailyResult is the base score of one day
type DailyResult struct {
	BasePoints          int
	Breakdown           map[string]int
	AllRequiredComplete bool
}

// BonusResult splits the bonus points of one day
type BonusResult struct {
	StreakBonus     int
	PerfectDayBonus int
	TotalBonus      int
}

// DailyPoints scores every metric of a challenge against one day's data.
// AllRequiredComplete turns false when a required metric earned exactly 0;
// partial credit still counts as complete.
func DailyPoints(metrics []models.MetricDefinition, metricData map[string]interface{}) DailyResult {
	result := DailyResult{
		Breakdown:           make(map[string]int, len(metrics)),
		AllRequiredComplete: true,
	}

	for _, metric := range metrics {
		points := MetricPoints(metric, metricData[metric.ID])

		result.Breakdown[metric.ID] = points
		result.BasePoints += points

		if metric.Required && points == 0 {
			result.AllRequiredComplete = false
		}
	}

	return result
}

// BonusPoints computes streak and perfect-day bonuses. currentStreak is the
// streak stored before this day is folded in, so the bonus rewards the
// existing run rather than today.
func BonusPoints(bonus models.BonusConfig, currentStreak int, allRequiredComplete bool) BonusResult {
	var result BonusResult

	if bonus.EnableStreakBonus && currentStreak > 0 {
		result.StreakBonus = bonus.StreakBonusPerDay() * currentStreak
	}
	if bonus.EnablePerfectDayBonus && allRequiredComplete {
		result.PerfectDayBonus = bonus.PerfectDayBonus()
	}

	result.TotalBonus = result.StreakBonus + result.PerfectDayBonus
	return result
}

// EntryScore is the single entry point used by submission and recalculation
func EntryScore(
	metrics []models.MetricDefinition,
	metricData map[string]interface{},
	bonus models.BonusConfig,
	currentStreak int,
) models.EntryScore {
	daily := DailyPoints(metrics, metricData)
	bonuses := BonusPoints(bonus, currentStreak, daily.AllRequiredComplete)

	return models.EntryScore{
		BasePoints:  daily.BasePoints,
		BonusPoints: bonuses.TotalBonus,
		TotalPoints: daily.BasePoints + bonuses.TotalBonus,
		Breakdown:   daily.Breakdown,
	}
}
