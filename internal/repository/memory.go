package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Miandari/dailygrit/pkg/models"
)

type memoryData struct {
	challenges   map[string]*models.Challenge
	participants map[string]*models.Participant
	entries      map[string]*models.DailyEntry
	requests     map[string]*models.JoinRequest
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		challenges:   make(map[string]*models.Challenge, len(d.challenges)),
		participants: make(map[string]*models.Participant, len(d.participants)),
		entries:      make(map[string]*models.DailyEntry, len(d.entries)),
		requests:     make(map[string]*models.JoinRequest, len(d.requests)),
	}
	for id, ch := range d.challenges {
		c.challenges[id] = copyChallenge(ch)
	}
	for id, p := range d.participants {
		c.participants[id] = copyParticipant(p)
	}
	for id, e := range d.entries {
		c.entries[id] = copyEntry(e)
	}
	for id, jr := range d.requests {
		c.requests[id] = copyJoinRequest(jr)
	}
	return c
}

// memoryStore keeps everything in process. Writes are serialised and a
// transaction works on a private copy that replaces the shared state on commit.
type memoryStore struct {
	root *memoryStore

	mu    sync.RWMutex
	txMu  sync.Mutex
	state *memoryData

	inTx bool
}

// NewMemoryStore creates an in-process store, used by tests and the memory storage driver
func NewMemoryStore() Store {
	s := &memoryStore{
		state: &memoryData{
			challenges:   map[string]*models.Challenge{},
			participants: map[string]*models.Participant{},
			entries:      map[string]*models.DailyEntry{},
			requests:     map[string]*models.JoinRequest{},
		},
	}
	s.root = s
	return s
}

func (s *memoryStore) Challenges() ChallengeRepository     { return &memChallengeRepository{s} }
func (s *memoryStore) Participants() ParticipantRepository { return &memParticipantRepository{s} }
func (s *memoryStore) Entries() EntryRepository            { return &memEntryRepository{s} }
func (s *memoryStore) JoinRequests() JoinRequestRepository { return &memJoinRequestRepository{s} }

func (s *memoryStore) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return models.PersistenceError("begin_transaction", err)
	}

	root := s.root
	root.txMu.Lock()
	defer root.txMu.Unlock()

	root.mu.RLock()
	working := root.state.clone()
	root.mu.RUnlock()

	tx := &memoryStore{root: root, state: working, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}

	root.mu.Lock()
	root.state = working
	root.mu.Unlock()
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *memoryStore) Close() {}

func (s *memoryStore) read(fn func(d *memoryData) error) error {
	if s.inTx {
		return fn(s.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *memoryStore) write(fn func(d *memoryData) error) error {
	if s.inTx {
		return fn(s.state)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func notFound(operation string) error {
	return fmt.Errorf("%s: %w", operation, models.ErrNotFound)
}

type memChallengeRepository struct{ s *memoryStore }

func (r *memChallengeRepository) Create(ctx context.Context, c *models.Challenge) error {
	return r.s.write(func(d *memoryData) error {
		if _, ok := d.challenges[c.ID]; ok {
			return fmt.Errorf("create_challenge: %w", models.ErrConflict)
		}
		now := time.Now().UTC()
		c.CreatedAt, c.UpdatedAt = now, now
		d.challenges[c.ID] = copyChallenge(c)
		return nil
	})
}

func (r *memChallengeRepository) GetByID(ctx context.Context, id string) (*models.Challenge, error) {
	var out *models.Challenge
	err := r.s.read(func(d *memoryData) error {
		c, ok := d.challenges[id]
		if !ok {
			return notFound("get_challenge")
		}
		out = copyChallenge(c)
		return nil
	})
	return out, err
}

func (r *memChallengeRepository) UpdateScoring(ctx context.Context, id string, metrics []models.MetricDefinition, bonus models.BonusConfig) error {
	return r.s.write(func(d *memoryData) error {
		c, ok := d.challenges[id]
		if !ok {
			return notFound("update_challenge_scoring")
		}
		c.Metrics = copyMetrics(metrics)
		c.BonusConfig = copyBonus(bonus)
		c.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *memChallengeRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *memoryData) error {
		if _, ok := d.challenges[id]; !ok {
			return notFound("delete_challenge")
		}
		delete(d.challenges, id)
		for pid, p := range d.participants {
			if p.ChallengeID == id {
				deleteParticipant(d, pid)
			}
		}
		for rid, jr := range d.requests {
			if jr.ChallengeID == id {
				delete(d.requests, rid)
			}
		}
		return nil
	})
}

type memParticipantRepository struct{ s *memoryStore }

func (r *memParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	return r.s.write(func(d *memoryData) error {
		if _, ok := d.challenges[p.ChallengeID]; !ok {
			return fmt.Errorf("create_participant: referenced row missing: %w", models.ErrNotFound)
		}
		for _, existing := range d.participants {
			if existing.ID == p.ID || (existing.ChallengeID == p.ChallengeID && existing.UserID == p.UserID) {
				return fmt.Errorf("create_participant: %w", models.ErrConflict)
			}
		}
		stored := copyParticipant(p)
		stored.CurrentStreak, stored.LongestStreak, stored.TotalPoints = 0, 0, 0
		d.participants[p.ID] = stored
		return nil
	})
}

func (r *memParticipantRepository) GetByID(ctx context.Context, id string) (*models.Participant, error) {
	return r.get("get_participant", id)
}

func (r *memParticipantRepository) GetForUpdate(ctx context.Context, id string) (*models.Participant, error) {
	return r.get("get_participant_for_update", id)
}

func (r *memParticipantRepository) get(operation, id string) (*models.Participant, error) {
	var out *models.Participant
	err := r.s.read(func(d *memoryData) error {
		p, ok := d.participants[id]
		if !ok {
			return notFound(operation)
		}
		out = copyParticipant(p)
		return nil
	})
	return out, err
}

func (r *memParticipantRepository) GetByChallengeAndUser(ctx context.Context, challengeID, userID string) (*models.Participant, error) {
	var out *models.Participant
	err := r.s.read(func(d *memoryData) error {
		for _, p := range d.participants {
			if p.ChallengeID == challengeID && p.UserID == userID {
				out = copyParticipant(p)
				return nil
			}
		}
		return notFound("get_participant_by_user")
	})
	return out, err
}

func (r *memParticipantRepository) ListByChallenge(ctx context.Context, challengeID string) ([]*models.Participant, error) {
	var out []*models.Participant
	err := r.s.read(func(d *memoryData) error {
		for _, p := range d.participants {
			if p.ChallengeID == challengeID {
				out = append(out, copyParticipant(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, err
}

func (r *memParticipantRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	return r.update("update_streaks", id, func(p *models.Participant) {
		p.CurrentStreak, p.LongestStreak = current, longest
	})
}

func (r *memParticipantRepository) UpdateTotalPoints(ctx context.Context, id string, total int) error {
	return r.update("update_total_points", id, func(p *models.Participant) {
		p.TotalPoints = total
	})
}

func (r *memParticipantRepository) update(operation, id string, fn func(p *models.Participant)) error {
	return r.s.write(func(d *memoryData) error {
		p, ok := d.participants[id]
		if !ok {
			return notFound(operation)
		}
		fn(p)
		return nil
	})
}

func (r *memParticipantRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *memoryData) error {
		if _, ok := d.participants[id]; !ok {
			return notFound("delete_participant")
		}
		deleteParticipant(d, id)
		return nil
	})
}

func deleteParticipant(d *memoryData, id string) {
	delete(d.participants, id)
	for entryID, e := range d.entries {
		if e.ParticipantID == id {
			delete(d.entries, entryID)
		}
	}
}

type memEntryRepository struct{ s *memoryStore }

func (r *memEntryRepository) GetByDate(ctx context.Context, participantID, entryDate string) (*models.DailyEntry, error) {
	var out *models.DailyEntry
	err := r.s.read(func(d *memoryData) error {
		if e := findEntry(d, participantID, entryDate); e != nil {
			out = copyEntry(e)
			return nil
		}
		return notFound("get_entry_by_date")
	})
	return out, err
}

func (r *memEntryRepository) Upsert(ctx context.Context, e *models.DailyEntry) error {
	return r.s.write(func(d *memoryData) error {
		if _, ok := d.participants[e.ParticipantID]; !ok {
			return fmt.Errorf("upsert_entry: referenced row missing: %w", models.ErrNotFound)
		}
		now := time.Now().UTC()
		if existing := findEntry(d, e.ParticipantID, e.EntryDate); existing != nil {
			e.ID = existing.ID
			e.CreatedAt = existing.CreatedAt
		} else {
			if e.ID == "" {
				e.ID = uuid.New().String()
			}
			e.CreatedAt = now
		}
		e.UpdatedAt = now
		if e.MetricData == nil {
			e.MetricData = map[string]interface{}{}
		}
		d.entries[e.ID] = copyEntry(e)
		return nil
	})
}

func (r *memEntryRepository) ListByParticipant(ctx context.Context, participantID string) ([]*models.DailyEntry, error) {
	var out []*models.DailyEntry
	err := r.s.read(func(d *memoryData) error {
		for _, e := range d.entries {
			if e.ParticipantID == participantID {
				out = append(out, copyEntry(e))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate < out[j].EntryDate })
	return out, err
}

func (r *memEntryRepository) ListCompletedDates(ctx context.Context, participantID string) ([]string, error) {
	var out []string
	err := r.s.read(func(d *memoryData) error {
		for _, e := range d.entries {
			if e.ParticipantID == participantID && e.IsCompleted {
				out = append(out, e.EntryDate)
			}
		}
		return nil
	})
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, err
}

func (r *memEntryRepository) UpdatePoints(ctx context.Context, entryID string, pointsEarned, bonusPoints int) error {
	return r.s.write(func(d *memoryData) error {
		e, ok := d.entries[entryID]
		if !ok {
			return notFound("update_entry_points")
		}
		e.PointsEarned, e.BonusPoints = pointsEarned, bonusPoints
		e.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *memEntryRepository) SumPoints(ctx context.Context, participantID string) (int, error) {
	total := 0
	err := r.s.read(func(d *memoryData) error {
		for _, e := range d.entries {
			if e.ParticipantID == participantID {
				total += e.PointsEarned + e.BonusPoints
			}
		}
		return nil
	})
	return total, err
}

type memJoinRequestRepository struct{ s *memoryStore }

func (r *memJoinRequestRepository) Create(ctx context.Context, jr *models.JoinRequest) error {
	return r.s.write(func(d *memoryData) error {
		if _, ok := d.challenges[jr.ChallengeID]; !ok {
			return fmt.Errorf("create_join_request: referenced row missing: %w", models.ErrNotFound)
		}
		for _, existing := range d.requests {
			if existing.ID == jr.ID || (existing.ChallengeID == jr.ChallengeID && existing.UserID == jr.UserID) {
				return fmt.Errorf("create_join_request: %w", models.ErrConflict)
			}
		}
		jr.Status = models.JoinRequestPending
		jr.CreatedAt = time.Now().UTC()
		jr.ReviewedAt, jr.ReviewedBy = nil, nil
		d.requests[jr.ID] = copyJoinRequest(jr)
		return nil
	})
}

func (r *memJoinRequestRepository) GetByID(ctx context.Context, id string) (*models.JoinRequest, error) {
	var out *models.JoinRequest
	err := r.s.read(func(d *memoryData) error {
		jr, ok := d.requests[id]
		if !ok {
			return notFound("get_join_request")
		}
		out = copyJoinRequest(jr)
		return nil
	})
	return out, err
}

func (r *memJoinRequestRepository) ListPending(ctx context.Context, challengeID string) ([]*models.JoinRequest, error) {
	var out []*models.JoinRequest
	err := r.s.read(func(d *memoryData) error {
		for _, jr := range d.requests {
			if jr.ChallengeID == challengeID && jr.Status == models.JoinRequestPending {
				out = append(out, copyJoinRequest(jr))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (r *memJoinRequestRepository) Review(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time) error {
	return r.s.write(func(d *memoryData) error {
		jr, ok := d.requests[id]
		if !ok || jr.Status != models.JoinRequestPending {
			return notFound("review_join_request")
		}
		jr.Status = status
		jr.ReviewedAt = &reviewedAt
		jr.ReviewedBy = &reviewerID
		return nil
	})
}

func findEntry(d *memoryData, participantID, entryDate string) *models.DailyEntry {
	for _, e := range d.entries {
		if e.ParticipantID == participantID && e.EntryDate == entryDate {
			return e
		}
	}
	return nil
}

func copyChallenge(c *models.Challenge) *models.Challenge {
	out := *c
	out.Metrics = copyMetrics(c.Metrics)
	out.BonusConfig = copyBonus(c.BonusConfig)
	return &out
}

func copyMetrics(metrics []models.MetricDefinition) []models.MetricDefinition {
	if metrics == nil {
		return nil
	}
	out := make([]models.MetricDefinition, len(metrics))
	for i, m := range metrics {
		m.Config = maps.Clone(m.Config)
		m.Tiers = slices.Clone(m.Tiers)
		if m.Points != nil {
			m.Points = models.IntPtr(*m.Points)
		}
		if m.Threshold != nil {
			m.Threshold = models.FloatPtr(*m.Threshold)
		}
		out[i] = m
	}
	return out
}

func copyBonus(b models.BonusConfig) models.BonusConfig {
	if b.StreakBonusPoints != nil {
		b.StreakBonusPoints = models.IntPtr(*b.StreakBonusPoints)
	}
	if b.PerfectDayBonusPoints != nil {
		b.PerfectDayBonusPoints = models.IntPtr(*b.PerfectDayBonusPoints)
	}
	return b
}

func copyParticipant(p *models.Participant) *models.Participant {
	out := *p
	return &out
}

func copyEntry(e *models.DailyEntry) *models.DailyEntry {
	out := *e
	out.MetricData = maps.Clone(e.MetricData)
	return &out
}

func copyJoinRequest(jr *models.JoinRequest) *models.JoinRequest {
	out := *jr
	if jr.ReviewedAt != nil {
		t := *jr.ReviewedAt
		out.ReviewedAt = &t
	}
	if jr.ReviewedBy != nil {
		by := *jr.ReviewedBy
		out.ReviewedBy = &by
	}
	return &out
}
