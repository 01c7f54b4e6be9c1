package score

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miandari/dailygrit/internal/streak"
	"github.com/Miandari/dailygrit/pkg/models"
)

const fixtureYAML = `
metrics:
  - id: workout
    name: Workout
    type: boolean
    required: true
    points: 2
  - id: pages
    name: Pages read
    type: number
    points: 10
    scoring_mode: scaled
    threshold: 20
enable_streak_bonus: true
enable_perfect_day_bonus: true
perfect_day_bonus_points: 10
entry:
  current_streak: 3
  metric_data:
    workout: true
    pages: 10
`

func TestParseFixture(t *testing.T) {
	fixture, err := ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)

	require.Len(t, fixture.Metrics, 2)
	assert.Equal(t, models.MetricBoolean, fixture.Metrics[0].Type)
	assert.Equal(t, models.ScoringScaled, fixture.Metrics[1].ScoringMode)
	assert.True(t, fixture.EnableStreakBonus)
	require.NotNil(t, fixture.PerfectDayBonusPoints)
	assert.Equal(t, 10, *fixture.PerfectDayBonusPoints)
	assert.Equal(t, 3, fixture.Entry.CurrentStreak)
	assert.Equal(t, true, fixture.Entry.MetricData["workout"])

	_, err = ParseFixture([]byte("entry: {}"))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = ParseFixture([]byte("metrics: [unterminated"))
	assert.Error(t, err)
}

func runScore(t *testing.T, args ...string) (models.EntryScore, error) {
	t.Helper()
	var out bytes.Buffer
	ScoreCmd.SetOut(&out)
	ScoreCmd.SetArgs(args)
	t.Cleanup(func() {
		_ = ScoreCmd.Flags().Set("streak", "0")
		ScoreCmd.Flags().Lookup("streak").Changed = false
		_ = ScoreCmd.Flags().Set("output", "json")
	})

	if err := ScoreCmd.Execute(); err != nil {
		return models.EntryScore{}, err
	}
	var result models.EntryScore
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	return result, nil
}

func TestScoreCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	result, err := runScore(t, path)
	require.NoError(t, err)

	// workout 2 + pages 10 * 10/20 = 5
	assert.Equal(t, 7, result.BasePoints)
	// streak 3 * 5 + perfect day 10
	assert.Equal(t, 25, result.BonusPoints)
	assert.Equal(t, 32, result.TotalPoints)
	assert.Equal(t, map[string]int{"workout": 2, "pages": 5}, result.Breakdown)
}

func TestScoreCommandStreakOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	result, err := runScore(t, path, "--streak", "0")
	require.NoError(t, err)
	assert.Equal(t, 10, result.BonusPoints)
}

func TestScoreCommandMissingFile(t *testing.T) {
	_, err := runScore(t, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestStreakCommand(t *testing.T) {
	var out bytes.Buffer
	StreakCmd.SetOut(&out)
	StreakCmd.SetArgs([]string{"--today", "2025-03-10", "--tz", "UTC", "--longest", "5", "2025-03-08", "2025-03-09", "2025-03-10", "2025-03-01"})

	require.NoError(t, StreakCmd.Execute())

	var result streak.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 3, result.CurrentStreak)
	assert.Equal(t, 5, result.LongestStreak)
}

func TestStreakCommandRejectsBadDate(t *testing.T) {
	StreakCmd.SetOut(&bytes.Buffer{})
	StreakCmd.SetArgs([]string{"--today", "2025-03-10", "03/09/2025"})
	assert.Error(t, StreakCmd.Execute())
}
