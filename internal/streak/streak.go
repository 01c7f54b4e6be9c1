// Package streak derives consecutive-day streaks from completed entry dates.
package streak

import (
	"time"

	"github.com/Miandari/dailygrit/pkg/utils"
)

// Result holds the streak state to persist on a participant
type Result struct {
	CurrentStreak int `json:"current_streak" yaml:"current_streak"`
	LongestStreak int `json:"longest_streak" yaml:"longest_streak"`
}

// Compute counts the run of completed days ending at today, walking back one
// calendar day at a time until the first missing day. Dates are compared as
// calendar days in today's location; entries after today are ignored.
//
// The longest streak only ratchets up: it is the larger of the current run
// and previousLongest, never a recount of the whole history.
func Compute(completed []time.Time, today time.Time, previousLongest int) Result {
	loc := today.Location()
	days := make(map[string]struct{}, len(completed))
	for _, d := range completed {
		days[utils.FormatDate(d.In(loc))] = struct{}{}
	}

	current := 0
	day := utils.StartOfDay(today)
	for {
		if _, ok := days[utils.FormatDate(day)]; !ok {
			break
		}
		current++
		day = day.AddDate(0, 0, -1)
	}

	longest := previousLongest
	if current > longest {
		longest = current
	}
	if longest < 0 {
		longest = 0
	}

	return Result{CurrentStreak: current, LongestStreak: longest}
}

// ComputeFromStrings is Compute over stored yyyy-MM-dd entry dates.
// Unparseable dates are skipped.
func ComputeFromStrings(completed []string, today time.Time, previousLongest int) Result {
	dates := make([]time.Time, 0, len(completed))
	for _, s := range completed {
		d, err := utils.ParseDate(s, today.Location())
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return Compute(dates, today, previousLongest)
}
