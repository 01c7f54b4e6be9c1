package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miandari/dailygrit/internal/lock"
	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
	"github.com/Miandari/dailygrit/pkg/models"
	"github.com/Miandari/dailygrit/pkg/utils"
)

var testNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store repository.Store
	svc   *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Init(logger.Config{Level: "error"})

	store := repository.NewMemoryStore()
	svc := NewServices(
		store,
		lock.NewMemoryLocker(),
		utils.FixedClock(testNow),
		metrics.New(prometheus.NewRegistry()),
		NewTokenService("test-secret", "dailygrit", time.Hour),
	)
	return &fixture{store: store, svc: svc}
}

func workoutMetric(points int) models.MetricDefinition {
	return models.MetricDefinition{
		ID:       "m1",
		Name:     "Workout",
		Type:     models.MetricBoolean,
		Required: true,
		Points:   models.IntPtr(points),
	}
}

// createChallenge returns the challenge and the creator's participant record
func (f *fixture) createChallenge(t *testing.T, creator string, mutate func(*models.CreateChallengeRequest)) (*models.Challenge, *models.Participant) {
	t.Helper()
	req := models.CreateChallengeRequest{
		Name:         "Thirty days of grit",
		StartsAt:     "2025-03-01",
		DurationDays: 30,
		Metrics:      []models.MetricDefinition{workoutMetric(1)},
	}
	if mutate != nil {
		mutate(&req)
	}

	ctx := context.Background()
	challenge, err := f.svc.Challenges.Create(ctx, creator, req)
	require.NoError(t, err)

	p, err := f.store.Participants().GetByChallengeAndUser(ctx, challenge.ID, creator)
	require.NoError(t, err)
	return challenge, p
}

func (f *fixture) submit(t *testing.T, actor, participantID, date string, done bool) *models.SubmitEntryResponse {
	t.Helper()
	resp, err := f.svc.Entries.Submit(context.Background(), actor, models.SubmitEntryRequest{
		ParticipantID: participantID,
		Date:          date,
		MetricData:    map[string]interface{}{"m1": done},
		IsCompleted:   done,
	})
	require.NoError(t, err)
	return resp
}

func TestSubmitScoresAndUpdatesParticipant(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", nil)

	resp := f.submit(t, "alice", p.ID, "", true)

	assert.Equal(t, "2025-03-10", resp.Entry.EntryDate)
	assert.Equal(t, 1, resp.Entry.PointsEarned)
	assert.Equal(t, 0, resp.Entry.BonusPoints)
	assert.Equal(t, map[string]int{"m1": 1}, resp.Score.Breakdown)
	assert.Equal(t, 1, resp.Participant.CurrentStreak)
	assert.Equal(t, 1, resp.Participant.LongestStreak)
	assert.Equal(t, 1, resp.Participant.TotalPoints)

	stored, err := f.store.Participants().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalPoints)
	assert.Equal(t, 1, stored.CurrentStreak)
}

func TestSubmitPerfectDayBonus(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.EnablePerfectDayBonus = true
		r.PerfectDayBonusPoints = models.IntPtr(10)
	})

	resp := f.submit(t, "alice", p.ID, "", true)

	assert.Equal(t, 1, resp.Score.BasePoints)
	assert.Equal(t, 10, resp.Score.BonusPoints)
	assert.Equal(t, 11, resp.Score.TotalPoints)
	assert.Equal(t, 11, resp.Participant.TotalPoints)
}

func TestSubmitStreakBonusUsesStoredStreak(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.EnableStreakBonus = true
		r.StreakBonusPoints = models.IntPtr(5)
	})
	require.NoError(t, f.store.Participants().UpdateStreaks(context.Background(), p.ID, 3, 3))

	// today's own outcome does not matter for the streak component
	resp := f.submit(t, "alice", p.ID, "", false)

	assert.Equal(t, 0, resp.Score.BasePoints)
	assert.Equal(t, 15, resp.Score.BonusPoints)
	assert.Equal(t, 3, resp.Participant.CurrentStreak, "incomplete entries leave streaks alone")
}

func TestSubmitBuildsStreakAcrossDays(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", nil)

	f.submit(t, "alice", p.ID, "2025-03-08", true)
	f.submit(t, "alice", p.ID, "2025-03-09", true)
	resp := f.submit(t, "alice", p.ID, "2025-03-10", true)

	assert.Equal(t, 3, resp.Participant.CurrentStreak)
	assert.Equal(t, 3, resp.Participant.LongestStreak)
	assert.Equal(t, 3, resp.Participant.TotalPoints)
}

func TestSubmitOverwritesSameDay(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", nil)

	first := f.submit(t, "alice", p.ID, "", false)
	second := f.submit(t, "alice", p.ID, "", true)

	assert.Equal(t, first.Entry.ID, second.Entry.ID)
	assert.Equal(t, 1, second.Participant.TotalPoints)

	entries, err := f.svc.Entries.List(context.Background(), "alice", p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmitLockedEntryIsRejectedUnchanged(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.LockEntriesAfterDay = true
	})
	ctx := context.Background()

	first := f.submit(t, "alice", p.ID, "", true)
	require.True(t, first.Entry.IsLocked)

	_, err := f.svc.Entries.Submit(ctx, "alice", models.SubmitEntryRequest{
		ParticipantID: p.ID,
		MetricData:    map[string]interface{}{"m1": false},
		IsCompleted:   false,
	})
	require.ErrorIs(t, err, models.ErrLocked)
	assert.Equal(t, 409, models.StatusFor(err))

	stored, err := f.svc.Entries.Get(ctx, "alice", p.ID, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, true, stored.MetricData["m1"])
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, 1, stored.PointsEarned)

	participant, err := f.store.Participants().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, participant.TotalPoints)
}

func TestSubmitUnauthorized(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	_, err := f.svc.Entries.Submit(ctx, "mallory", models.SubmitEntryRequest{
		ParticipantID: p.ID,
		MetricData:    map[string]interface{}{"m1": true},
		IsCompleted:   true,
	})
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.store.Entries().GetByDate(ctx, p.ID, "2025-03-10")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Entries.List(ctx, "mallory", p.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	_, err := f.svc.Entries.Submit(ctx, "alice", models.SubmitEntryRequest{ParticipantID: p.ID, Date: "2025-03-11"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.Entries.Submit(ctx, "alice", models.SubmitEntryRequest{ParticipantID: p.ID, Date: "10/03/2025"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.Entries.Submit(ctx, "alice", models.SubmitEntryRequest{ParticipantID: "missing"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEntryGetNotFound(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", nil)

	_, err := f.svc.Entries.Get(context.Background(), "alice", p.ID, "2025-03-05")
	assert.ErrorIs(t, err, models.ErrEntryNotFound)
}

func TestConcurrentSubmissionsKeepTotalConsistent(t *testing.T) {
	f := newFixture(t)
	_, p := f.createChallenge(t, "alice", nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for day := 1; day <= 10; day++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := f.svc.Entries.Submit(context.Background(), "alice", models.SubmitEntryRequest{
				ParticipantID: p.ID,
				Date:          fmt.Sprintf("2025-03-%02d", day),
				MetricData:    map[string]interface{}{"m1": true},
				IsCompleted:   true,
			})
			errs <- err
		}(day)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	participant, err := f.store.Participants().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, participant.TotalPoints)
	assert.Equal(t, 10, participant.CurrentStreak)
}

func TestUpdateScoringRecalculates(t *testing.T) {
	f := newFixture(t)
	challenge, p := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	f.submit(t, "alice", p.ID, "2025-03-09", true)
	f.submit(t, "alice", p.ID, "2025-03-10", true)

	result, err := f.svc.Challenges.UpdateScoring(ctx, "alice", challenge.ID, models.UpdateScoringRequest{
		Metrics: []models.MetricDefinition{workoutMetric(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recalculated)

	entry, err := f.svc.Entries.Get(ctx, "alice", p.ID, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 5, entry.PointsEarned)
	assert.Equal(t, 0, entry.BonusPoints)

	participant, err := f.store.Participants().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, participant.TotalPoints)
	assert.Equal(t, 2, participant.CurrentStreak, "recalculation never touches streaks")
	assert.Equal(t, 2, participant.LongestStreak)
}

func TestRecalculateUsesCurrentStreakForBonus(t *testing.T) {
	f := newFixture(t)
	challenge, p := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	f.submit(t, "alice", p.ID, "2025-03-09", true)
	f.submit(t, "alice", p.ID, "2025-03-10", true)

	result, err := f.svc.Challenges.UpdateScoring(ctx, "alice", challenge.ID, models.UpdateScoringRequest{
		Metrics: []models.MetricDefinition{workoutMetric(1)},
		BonusConfig: models.BonusConfig{
			EnableStreakBonus: true,
			StreakBonusPoints: models.IntPtr(5),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recalculated)

	// both entries get the present streak of 2, not the streak of their own day
	entries, err := f.svc.Entries.List(ctx, "alice", p.ID)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, 10, e.BonusPoints, e.EntryDate)
	}
}

func TestRecalculateRequiresCreator(t *testing.T) {
	f := newFixture(t)
	challenge, _ := f.createChallenge(t, "alice", nil)

	_, err := f.svc.Recalculation.Recalculate(context.Background(), "bob", challenge.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.svc.Recalculation.Recalculate(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, models.ErrChallengeNotFound)

	_, err = f.svc.Challenges.UpdateScoring(context.Background(), "bob", challenge.ID, models.UpdateScoringRequest{
		Metrics: []models.MetricDefinition{workoutMetric(5)},
	})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

type failingEntries struct {
	repository.EntryRepository
	failFor string
}

func (e *failingEntries) ListByParticipant(ctx context.Context, participantID string) ([]*models.DailyEntry, error) {
	if participantID == e.failFor {
		return nil, models.PersistenceError("list_entries", errors.New("disk on fire"))
	}
	return e.EntryRepository.ListByParticipant(ctx, participantID)
}

type failingStore struct {
	repository.Store
	failFor string
}

func (s *failingStore) Entries() repository.EntryRepository {
	return &failingEntries{EntryRepository: s.Store.Entries(), failFor: s.failFor}
}

func (s *failingStore) WithTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithTransaction(ctx, func(tx repository.Store) error {
		return fn(&failingStore{Store: tx, failFor: s.failFor})
	})
}

func TestRecalculateSkipsFailingParticipant(t *testing.T) {
	f := newFixture(t)
	challenge, alice := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	bob, err := f.svc.Participants.Join(ctx, "bob", challenge.ID, "")
	require.NoError(t, err)

	f.submit(t, "alice", alice.ID, "", true)
	f.submit(t, "bob", bob.ID, "", true)

	require.NoError(t, f.store.Challenges().UpdateScoring(ctx, challenge.ID,
		[]models.MetricDefinition{workoutMetric(5)}, models.BonusConfig{}))

	recalc := NewRecalculationService(&failingStore{Store: f.store, failFor: bob.ID}, lock.NewMemoryLocker(), nil)
	result, err := recalc.Recalculate(ctx, "alice", challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Recalculated)

	a, err := f.store.Participants().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, a.TotalPoints)

	b, err := f.store.Participants().GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, b.TotalPoints, "failed participant is left as it was")
}

func TestCreateChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	challenge, p := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.IsPublic = new(bool)
	})

	assert.False(t, challenge.IsPublic)
	require.NotNil(t, challenge.InviteCode)
	assert.Len(t, *challenge.InviteCode, 8)
	assert.Equal(t, "2025-03-01", utils.FormatDate(challenge.StartsAt))
	assert.Equal(t, "2025-03-31", utils.FormatDate(challenge.EndsAt))
	assert.Equal(t, "alice", p.UserID)

	got, err := f.svc.Challenges.Get(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.Name, got.Name)

	_, err = f.svc.Challenges.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrChallengeNotFound)
}

func TestCreateChallengeValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Challenges.Create(context.Background(), "alice", models.CreateChallengeRequest{
		Name:         "ab",
		DurationDays: 400,
		Metrics: []models.MetricDefinition{
			{ID: "m", Name: "m", Type: models.MetricNumber, ScoringMode: models.ScoringTiered},
		},
	})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "duration_days")
	assert.Equal(t, 400, models.StatusFor(err))
}

func TestJoinPrivateChallenge(t *testing.T) {
	f := newFixture(t)
	challenge, _ := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.IsPublic = new(bool)
	})
	ctx := context.Background()

	_, err := f.svc.Participants.Join(ctx, "bob", challenge.ID, "WRONG123")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	p, err := f.svc.Participants.Join(ctx, "bob", challenge.ID, *challenge.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.UserID)
	assert.Equal(t, models.ParticipantActive, p.Status)

	_, err = f.svc.Participants.Join(ctx, "bob", challenge.ID, *challenge.InviteCode)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.svc.Participants.Join(ctx, "bob", "missing", "")
	assert.ErrorIs(t, err, models.ErrChallengeNotFound)
}

func TestLeaveAndRemove(t *testing.T) {
	f := newFixture(t)
	challenge, alice := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	bob, err := f.svc.Participants.Join(ctx, "bob", challenge.ID, "")
	require.NoError(t, err)
	carol, err := f.svc.Participants.Join(ctx, "carol", challenge.ID, "")
	require.NoError(t, err)
	f.submit(t, "bob", bob.ID, "", true)

	assert.ErrorIs(t, f.svc.Participants.Leave(ctx, "alice", challenge.ID), models.ErrValidation)
	assert.ErrorIs(t, f.svc.Participants.Remove(ctx, "bob", challenge.ID, carol.ID), models.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Participants.Remove(ctx, "alice", challenge.ID, alice.ID), models.ErrValidation)

	require.NoError(t, f.svc.Participants.Leave(ctx, "bob", challenge.ID))
	_, err = f.store.Entries().GetByDate(ctx, bob.ID, "2025-03-10")
	assert.ErrorIs(t, err, models.ErrNotFound, "entries go with the participant")
	assert.ErrorIs(t, f.svc.Participants.Leave(ctx, "bob", challenge.ID), models.ErrParticipantNotFound)

	require.NoError(t, f.svc.Participants.Remove(ctx, "alice", challenge.ID, carol.ID))
	_, err = f.store.Participants().GetByID(ctx, carol.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProgressAndLeaderboard(t *testing.T) {
	f := newFixture(t)
	challenge, alice := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.Metrics = []models.MetricDefinition{workoutMetric(3)}
	})
	ctx := context.Background()

	bob, err := f.svc.Participants.Join(ctx, "bob", challenge.ID, "")
	require.NoError(t, err)

	// alice: 2 completed days, bob: 3 completed days
	f.submit(t, "alice", alice.ID, "2025-03-09", true)
	f.submit(t, "alice", alice.ID, "2025-03-10", true)
	require.NoError(t, f.store.Challenges().UpdateScoring(ctx, challenge.ID,
		[]models.MetricDefinition{workoutMetric(1)}, models.BonusConfig{}))
	f.submit(t, "bob", bob.ID, "2025-03-08", true)
	f.submit(t, "bob", bob.ID, "2025-03-09", true)
	f.submit(t, "bob", bob.ID, "2025-03-10", true)

	progress, err := f.svc.Participants.Progress(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.CompletedDays)
	assert.Equal(t, 10, progress.TotalDays)
	assert.Equal(t, 30, progress.CompletionRate)
	assert.Equal(t, "2025-03-10", progress.LastActivity)

	byPoints, err := f.svc.Participants.Leaderboard(ctx, challenge.ID, "")
	require.NoError(t, err)
	require.Len(t, byPoints.Entries, 2)
	assert.Equal(t, models.LeaderboardByPoints, byPoints.SortBy)
	assert.Equal(t, "alice", byPoints.Entries[0].UserID)
	assert.Equal(t, 6, byPoints.Entries[0].TotalPoints)
	assert.Equal(t, 1, byPoints.Entries[0].Rank)
	assert.Equal(t, 2, byPoints.Entries[1].Rank)

	byCompletion, err := f.svc.Participants.Leaderboard(ctx, challenge.ID, models.LeaderboardByCompletion)
	require.NoError(t, err)
	assert.Equal(t, "bob", byCompletion.Entries[0].UserID)

	_, err = f.svc.Participants.Leaderboard(ctx, challenge.ID, "alphabetical")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProgressVisibleToChallengeMembersOnly(t *testing.T) {
	f := newFixture(t)
	challenge, alice := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	bob, err := f.svc.Participants.Join(ctx, "bob", challenge.ID, "")
	require.NoError(t, err)
	f.submit(t, "bob", bob.ID, "2025-03-10", true)

	own, err := f.svc.Participants.Progress(ctx, "bob", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, own.CompletedDays)

	_, err = f.svc.Participants.Progress(ctx, "bob", alice.ID)
	assert.NoError(t, err, "members see each other")

	_, err = f.svc.Participants.Progress(ctx, "mallory", bob.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.svc.Participants.Progress(ctx, "mallory", "missing")
	assert.ErrorIs(t, err, models.ErrParticipantNotFound)
}

func TestJoinRequestApproveFlow(t *testing.T) {
	f := newFixture(t)
	private, _ := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.IsPublic = new(bool)
	})
	public, _ := f.createChallenge(t, "alice", nil)
	ctx := context.Background()

	_, err := f.svc.Participants.RequestJoin(ctx, "bob", public.ID)
	assert.ErrorIs(t, err, models.ErrValidation, "public challenges are joined directly")
	_, err = f.svc.Participants.RequestJoin(ctx, "bob", "missing")
	assert.ErrorIs(t, err, models.ErrChallengeNotFound)
	_, err = f.svc.Participants.RequestJoin(ctx, "alice", private.ID)
	assert.ErrorIs(t, err, models.ErrConflict, "creator is already a participant")

	request, err := f.svc.Participants.RequestJoin(ctx, "bob", private.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestPending, request.Status)
	assert.Equal(t, "bob", request.UserID)

	_, err = f.svc.Participants.RequestJoin(ctx, "bob", private.ID)
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.svc.Participants.ListRequests(ctx, "bob", private.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	pending, err := f.svc.Participants.ListRequests(ctx, "alice", private.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, request.ID, pending[0].ID)

	_, err = f.svc.Participants.ApproveRequest(ctx, "bob", request.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = f.svc.Participants.ApproveRequest(ctx, "alice", "missing")
	assert.ErrorIs(t, err, models.ErrJoinRequestNotFound)

	participant, err := f.svc.Participants.ApproveRequest(ctx, "alice", request.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", participant.UserID)
	assert.Equal(t, private.ID, participant.ChallengeID)
	assert.Equal(t, models.ParticipantActive, participant.Status)

	stored, err := f.store.JoinRequests().GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "alice", *stored.ReviewedBy)
	require.NotNil(t, stored.ReviewedAt)
	assert.True(t, stored.ReviewedAt.Equal(testNow))

	_, err = f.svc.Participants.ApproveRequest(ctx, "alice", request.ID)
	assert.ErrorIs(t, err, models.ErrValidation, "already reviewed")
	_, err = f.svc.Participants.RejectRequest(ctx, "alice", request.ID)
	assert.ErrorIs(t, err, models.ErrValidation)

	pending, err = f.svc.Participants.ListRequests(ctx, "alice", private.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestJoinRequestReject(t *testing.T) {
	f := newFixture(t)
	challenge, _ := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.IsPublic = new(bool)
	})
	ctx := context.Background()

	request, err := f.svc.Participants.RequestJoin(ctx, "bob", challenge.ID)
	require.NoError(t, err)

	_, err = f.svc.Participants.RejectRequest(ctx, "bob", request.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	rejected, err := f.svc.Participants.RejectRequest(ctx, "alice", request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, "alice", *rejected.ReviewedBy)

	_, err = f.store.Participants().GetByChallengeAndUser(ctx, challenge.ID, "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Participants.RequestJoin(ctx, "bob", challenge.ID)
	assert.ErrorIs(t, err, models.ErrConflict, "one request per user")
}

func TestApproveRequestRollsBackWhenAlreadyParticipating(t *testing.T) {
	f := newFixture(t)
	challenge, _ := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.IsPublic = new(bool)
	})
	ctx := context.Background()

	request, err := f.svc.Participants.RequestJoin(ctx, "bob", challenge.ID)
	require.NoError(t, err)
	_, err = f.svc.Participants.Join(ctx, "bob", challenge.ID, *challenge.InviteCode)
	require.NoError(t, err)

	_, err = f.svc.Participants.ApproveRequest(ctx, "alice", request.ID)
	assert.ErrorIs(t, err, models.ErrConflict)

	stored, err := f.store.JoinRequests().GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestPending, stored.Status)
}

func TestDeleteChallengeCascades(t *testing.T) {
	f := newFixture(t)
	challenge, alice := f.createChallenge(t, "alice", func(r *models.CreateChallengeRequest) {
		r.IsPublic = new(bool)
	})
	ctx := context.Background()

	f.submit(t, "alice", alice.ID, "2025-03-10", true)
	request, err := f.svc.Participants.RequestJoin(ctx, "bob", challenge.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Challenges.Delete(ctx, "bob", challenge.ID), models.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Challenges.Delete(ctx, "alice", "missing"), models.ErrChallengeNotFound)

	require.NoError(t, f.svc.Challenges.Delete(ctx, "alice", challenge.ID))

	_, err = f.svc.Challenges.Get(ctx, challenge.ID)
	assert.ErrorIs(t, err, models.ErrChallengeNotFound)
	_, err = f.store.Participants().GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.store.Entries().GetByDate(ctx, alice.ID, "2025-03-10")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.store.JoinRequests().GetByID(ctx, request.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTokenService(t *testing.T) {
	tokens := NewTokenService("secret", "dailygrit", time.Hour)

	signed, expiresAt, err := tokens.Issue("alice")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	userID, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	_, err = NewTokenService("other", "dailygrit", time.Hour).Validate(signed)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = NewTokenService("secret", "someone-else", time.Hour).Validate(signed)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	expired := &tokenService{secret: []byte("secret"), issuer: "dailygrit", expiry: time.Minute,
		now: func() time.Time { return time.Now().Add(-time.Hour) }}
	old, _, err := expired.Issue("alice")
	require.NoError(t, err)
	_, err = tokens.Validate(old)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	_, _, err = tokens.Issue(" ")
	assert.ErrorIs(t, err, models.ErrValidation)
}
