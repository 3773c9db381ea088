package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Presence/internal/domain"
)

func pendingJob(priority int, createdAt time.Time) *domain.Job {
	return &domain.Job{
		ID:        uuid.New(),
		Type:      domain.JobTypePost,
		Status:    domain.JobStatusPending,
		Priority:  priority,
		CreatedAt: createdAt,
	}
}

func TestMemoryJobStore_EnqueueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	job := pendingJob(1, time.Now())
	if err := store.Enqueue(ctx, job); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}

	// Claim, then enqueue the same ID again: the live job must not be reset.
	claimed, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.ID != job.ID {
		t.Fatalf("claimed wrong job")
	}

	duplicate := *job
	duplicate.Status = domain.JobStatusPending
	if err := store.Enqueue(ctx, &duplicate); err != nil {
		t.Fatalf("second enqueue should be a silent no-op: %v", err)
	}

	got, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.JobStatusProcessing {
		t.Errorf("status = %s, second enqueue must not overwrite the claimed job", got.Status)
	}

	if _, err := store.ClaimNext(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("exactly one live job expected, claim returned err=%v", err)
	}
}

func TestMemoryJobStore_ClaimOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	base := time.Now().UTC()

	low := pendingJob(1, base)
	highOld := pendingJob(5, base.Add(time.Second))
	highNew := pendingJob(5, base.Add(2*time.Second))

	for _, j := range []*domain.Job{low, highNew, highOld} {
		if err := store.Enqueue(ctx, j); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	// Priority descending first, then creation time ascending.
	wantOrder := []uuid.UUID{highOld.ID, highNew.ID, low.ID}
	for i, want := range wantOrder {
		got, err := store.ClaimNext(ctx)
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		if got.ID != want {
			t.Fatalf("claim %d: got %s, want %s", i, got.ID, want)
		}
	}
}

func TestMemoryJobStore_ConcurrentClaimsAreDistinct(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	const m = 32
	for i := 0; i < m; i++ {
		if err := store.Enqueue(ctx, pendingJob(i%5, time.Now())); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	var mu sync.Mutex
	claimed := make(map[uuid.UUID]int)

	var wg sync.WaitGroup
	for i := 0; i < m; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := store.ClaimNext(ctx)
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			mu.Lock()
			claimed[job.ID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(claimed) != m {
		t.Fatalf("claimed %d distinct jobs, want %d", len(claimed), m)
	}
	for id, n := range claimed {
		if n != 1 {
			t.Errorf("job %s claimed %d times", id, n)
		}
	}
}

func TestMemoryJobStore_CompleteAndFailRequireProcessing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	job := pendingJob(1, time.Now())
	if err := store.Enqueue(ctx, job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := store.Complete(ctx, job.ID, nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("complete on pending job: err = %v, want ErrInvalidState", err)
	}

	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := store.Fail(ctx, job.ID, "rate-limited"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, _ := store.GetByID(ctx, job.ID)
	if got.Status != domain.JobStatusFailed || got.Error != "rate-limited" {
		t.Errorf("job = %+v, want failed with error recorded", got)
	}

	// Failed jobs are terminal: the store never requeues them.
	if _, err := store.ClaimNext(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("failed job must not be claimable again, err = %v", err)
	}
}

func TestMemoryJobStore_ReclaimStale(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	job := pendingJob(1, time.Now())
	if err := store.Enqueue(ctx, job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Fresh claim is not stale yet.
	n, err := store.ReclaimStale(ctx, time.Hour)
	if err != nil || n != 0 {
		t.Fatalf("reclaim fresh: n=%d err=%v, want 0", n, err)
	}

	// With a zero threshold the processing job counts as stuck.
	time.Sleep(5 * time.Millisecond)
	n, err = store.ReclaimStale(ctx, 0)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if n != 1 {
		t.Fatalf("reclaimed %d, want 1", n)
	}

	got, _ := store.GetByID(ctx, job.ID)
	if got.Status != domain.JobStatusPending {
		t.Errorf("status = %s, want pending after reclaim", got.Status)
	}
}

func TestMemoryScheduleStore_TransitionSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryScheduleStore()

	day := domain.DayOf(time.Now())
	slot := domain.ScheduleSlot{
		ID:       uuid.New(),
		Activity: domain.ActivityTweet,
		Status:   domain.SlotStatusPending,
	}
	sched := &domain.DaySchedule{Date: day, Slots: []domain.ScheduleSlot{slot}, GeneratedAt: time.Now()}
	if err := store.UpsertDay(ctx, sched); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.TransitionSlot(ctx, day, slot.ID, domain.SlotStatusPending, domain.SlotStatusInProgress); err != nil {
		t.Fatalf("transition: %v", err)
	}

	// Second identical transition must fail: slot is no longer pending.
	err := store.TransitionSlot(ctx, day, slot.ID, domain.SlotStatusPending, domain.SlotStatusInProgress)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("repeat transition err = %v, want ErrInvalidState", err)
	}

	got, err := store.GetDay(ctx, day)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if got.Slots[0].Status != domain.SlotStatusInProgress {
		t.Errorf("slot status = %s, want in_progress", got.Slots[0].Status)
	}
}

func TestMemorySettingsStore_Defaults(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySettingsStore()

	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if len(settings) != len(domain.Catalog()) {
		t.Fatalf("got %d settings, want one per catalog entry (%d)", len(settings), len(domain.Catalog()))
	}

	dist := Weights(settings)
	if dist.Sum() != 100 {
		t.Errorf("default weights sum to %d, want 100", dist.Sum())
	}

	enabled, err := store.DispatchEnabled(ctx)
	if err != nil || !enabled {
		t.Errorf("dispatch should default to enabled, got %v err=%v", enabled, err)
	}
}
