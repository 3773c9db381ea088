package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Presence/internal/domain"
)

// In-memory реализации хранилищ: локальная разработка без Postgres и тесты.
// Семантика операций (идемпотентный Enqueue, атомарный ClaimNext,
// условный TransitionSlot) повторяет Postgres-реализации один в один.

// MemoryJobStore — JobStore в памяти.
type MemoryJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.Job
}

// NewMemoryJobStore создаёт новый MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[uuid.UUID]*domain.Job)}
}

var _ JobStore = (*MemoryJobStore)(nil)

func (s *MemoryJobStore) Enqueue(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return nil
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *MemoryJobStore) ClaimNext(_ context.Context) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *domain.Job
	for _, job := range s.jobs {
		if job.Status != domain.JobStatusPending {
			continue
		}
		if best == nil ||
			job.Priority > best.Priority ||
			(job.Priority == best.Priority && job.CreatedAt.Before(best.CreatedAt)) {
			best = job
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}

	best.MarkProcessing()
	return cloneJob(best), nil
}

func (s *MemoryJobStore) Complete(_ context.Context, id uuid.UUID, result map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != domain.JobStatusProcessing {
		return ErrInvalidState
	}
	job.MarkCompleted(result)
	return nil
}

func (s *MemoryJobStore) Fail(_ context.Context, id uuid.UUID, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != domain.JobStatusProcessing {
		return ErrInvalidState
	}
	job.MarkFailed(errMsg)
	return nil
}

func (s *MemoryJobStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *MemoryJobStore) List(_ context.Context, status domain.JobStatus, limit int) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	var jobs []domain.Job
	for _, job := range s.jobs {
		if status != "" && job.Status != status {
			continue
		}
		jobs = append(jobs, *cloneJob(job))
	}

	// Последние первыми, как в SQL-реализации.
	for i := 0; i < len(jobs); i++ {
		for j := i + 1; j < len(jobs); j++ {
			if jobs[j].CreatedAt.After(jobs[i].CreatedAt) {
				jobs[i], jobs[j] = jobs[j], jobs[i]
			}
		}
	}
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *MemoryJobStore) ReclaimStale(_ context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	reclaimed := 0
	for _, job := range s.jobs {
		if job.Status == domain.JobStatusProcessing && job.ClaimedAt != nil && job.ClaimedAt.Before(cutoff) {
			job.Status = domain.JobStatusPending
			job.ClaimedAt = nil
			reclaimed++
		}
	}
	return reclaimed, nil
}

func cloneJob(job *domain.Job) *domain.Job {
	clone := *job
	if job.Payload != nil {
		clone.Payload = make(map[string]any, len(job.Payload))
		for k, v := range job.Payload {
			clone.Payload[k] = v
		}
	}
	if job.Result != nil {
		clone.Result = make(map[string]any, len(job.Result))
		for k, v := range job.Result {
			clone.Result[k] = v
		}
	}
	return &clone
}

// MemoryScheduleStore — ScheduleStore в памяти.
type MemoryScheduleStore struct {
	mu   sync.Mutex
	days map[time.Time]*domain.DaySchedule
}

// NewMemoryScheduleStore создаёт новый MemoryScheduleStore.
func NewMemoryScheduleStore() *MemoryScheduleStore {
	return &MemoryScheduleStore{days: make(map[time.Time]*domain.DaySchedule)}
}

var _ ScheduleStore = (*MemoryScheduleStore)(nil)

func (s *MemoryScheduleStore) UpsertDay(_ context.Context, sched *domain.DaySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.days[domain.DayOf(sched.Date)] = cloneSchedule(sched)
	return nil
}

func (s *MemoryScheduleStore) GetDay(_ context.Context, day time.Time) (*domain.DaySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.days[domain.DayOf(day)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSchedule(sched), nil
}

func (s *MemoryScheduleStore) TransitionSlot(_ context.Context, day time.Time, slotID uuid.UUID, from, to domain.SlotStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.days[domain.DayOf(day)]
	if !ok {
		return ErrInvalidState
	}

	for i := range sched.Slots {
		if sched.Slots[i].ID == slotID {
			if sched.Slots[i].Status != from {
				return ErrInvalidState
			}
			sched.Slots[i].Status = to
			return nil
		}
	}
	return ErrInvalidState
}

func cloneSchedule(sched *domain.DaySchedule) *domain.DaySchedule {
	clone := *sched
	clone.Slots = make([]domain.ScheduleSlot, len(sched.Slots))
	copy(clone.Slots, sched.Slots)
	return &clone
}

// MemorySettingsStore — SettingsStore в памяти.
type MemorySettingsStore struct {
	mu              sync.Mutex
	settings        map[domain.ActivityType]ActivitySetting
	dispatchEnabled bool
}

// NewMemorySettingsStore создаёт новый MemorySettingsStore
// с настройками по умолчанию и включённой диспетчеризацией.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{
		settings:        make(map[domain.ActivityType]ActivitySetting),
		dispatchEnabled: true,
	}
}

var _ SettingsStore = (*MemorySettingsStore)(nil)

func (s *MemorySettingsStore) GetSettings(_ context.Context) (map[domain.ActivityType]ActivitySetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return withDefaults(s.settings), nil
}

func (s *MemorySettingsStore) SetWeights(_ context.Context, dist domain.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for activity, weight := range dist {
		setting, ok := s.settings[activity]
		if !ok {
			setting = ActivitySetting{Activity: activity, Enabled: true}
		}
		setting.Weight = weight
		setting.UpdatedAt = now
		s.settings[activity] = setting
	}
	return nil
}

func (s *MemorySettingsStore) SetEnabled(_ context.Context, activity domain.ActivityType, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, ok := s.settings[activity]
	if !ok {
		setting = ActivitySetting{Activity: activity, Weight: domain.DefaultDistribution()[activity]}
	}
	setting.Enabled = enabled
	setting.UpdatedAt = time.Now().UTC()
	s.settings[activity] = setting
	return nil
}

func (s *MemorySettingsStore) DispatchEnabled(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchEnabled, nil
}

func (s *MemorySettingsStore) SetDispatchEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchEnabled = enabled
	return nil
}

// MemorySessionStore — SessionStore в памяти.
type MemorySessionStore struct {
	mu      sync.Mutex
	records map[string]SessionRecord
}

// NewMemorySessionStore создаёт новый MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{records: make(map[string]SessionRecord)}
}

var _ SessionStore = (*MemorySessionStore)(nil)

func sessionKey(account string, platform domain.Platform) string {
	return account + "@" + string(platform)
}

func (s *MemorySessionStore) UpsertSession(_ context.Context, rec *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionKey(rec.Account, rec.Platform)] = *rec
	return nil
}

func (s *MemorySessionStore) DeleteSession(_ context.Context, account string, platform domain.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionKey(account, platform))
	return nil
}

func (s *MemorySessionStore) ListSessions(_ context.Context) ([]SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SessionRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	return records, nil
}
