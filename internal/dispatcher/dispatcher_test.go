package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/repo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	jobs      *repo.MemoryJobStore
	schedules *repo.MemoryScheduleStore
	settings  *repo.MemorySettingsStore
	d         *Dispatcher
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	f := &fixture{
		jobs:      repo.NewMemoryJobStore(),
		schedules: repo.NewMemoryScheduleStore(),
		settings:  repo.NewMemorySettingsStore(),
	}

	f.d = New(Config{
		Jobs:      f.jobs,
		Schedules: f.schedules,
		Settings:  f.settings,
		Accounts: map[domain.Platform]string{
			domain.PlatformTwitter:  "alice",
			domain.PlatformLinkedIn: "alice-pro",
		},
		Logger:  testLogger(),
		NowFunc: func() time.Time { return now },
	})

	return f
}

// slotAt builds a pending slot with a 15-minute window starting at start.
func slotAt(activity domain.ActivityType, start time.Time, priority int) domain.ScheduleSlot {
	return domain.ScheduleSlot{
		ID:        uuid.New(),
		Activity:  activity,
		StartTime: start,
		EndTime:   start.Add(domain.SlotDuration),
		Status:    domain.SlotStatusPending,
		Priority:  priority,
	}
}

func upsertDay(t *testing.T, f *fixture, day time.Time, slots ...domain.ScheduleSlot) {
	t.Helper()
	err := f.schedules.UpsertDay(context.Background(), &domain.DaySchedule{
		Date:        day,
		Slots:       slots,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("upsert day: %v", err)
	}
}

func slotStatus(t *testing.T, f *fixture, day time.Time, id uuid.UUID) domain.SlotStatus {
	t.Helper()
	sched, err := f.schedules.GetDay(context.Background(), day)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	slot, ok := sched.SlotByID(id)
	if !ok {
		t.Fatalf("slot %s not found", id)
	}
	return slot.Status
}

func TestTickDispatchesDueSlotExactlyOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 7, 0, 0, time.UTC)
	day := domain.DayOf(now)

	f := newFixture(t, now)

	due := slotAt(domain.ActivityTweet, now.Add(-5*time.Minute), 5)
	future := slotAt(domain.ActivityTweet, now.Add(time.Hour), 5)
	upsertDay(t, f, day, due, future)

	if err := f.d.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if got := slotStatus(t, f, day, due.ID); got != domain.SlotStatusInProgress {
		t.Errorf("due slot status = %s, want in_progress", got)
	}
	if got := slotStatus(t, f, day, future.ID); got != domain.SlotStatusPending {
		t.Errorf("future slot status = %s, want pending", got)
	}

	job, err := f.jobs.GetByID(ctx, due.ID)
	if err != nil {
		t.Fatalf("job for due slot: %v", err)
	}
	if job.Type != domain.JobTypePost {
		t.Errorf("job type = %s, want post", job.Type)
	}
	if job.Account() != "alice" || job.Platform() != domain.PlatformTwitter {
		t.Errorf("job payload = %v, want alice/twitter", job.Payload)
	}

	// A second tick over the same window must not duplicate the job.
	if err := f.d.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}

	if _, err := f.jobs.ClaimNext(ctx); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := f.jobs.ClaimNext(ctx); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("second claim err = %v, want ErrNotFound (single job expected)", err)
	}
}

func TestTickSkipsIdleAndUnmappedSlots(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 3, 0, 0, time.UTC)
	day := domain.DayOf(now)

	f := newFixture(t, now)
	// Remove the linkedin account so its slots have nowhere to run.
	f.d.accounts = map[domain.Platform]string{domain.PlatformTwitter: "alice"}

	idle := slotAt(domain.ActivityIdle, now.Add(-time.Minute), 0)
	noAccount := slotAt(domain.ActivityFollowConnect, now.Add(-time.Minute), 4)
	upsertDay(t, f, day, idle, noAccount)

	if err := f.d.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if got := slotStatus(t, f, day, idle.ID); got != domain.SlotStatusSkipped {
		t.Errorf("idle slot status = %s, want skipped", got)
	}
	if got := slotStatus(t, f, day, noAccount.ID); got != domain.SlotStatusSkipped {
		t.Errorf("no-account slot status = %s, want skipped", got)
	}

	if _, err := f.jobs.ClaimNext(ctx); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("skipped slots must not enqueue jobs, claim err = %v", err)
	}
}

func TestTickSkipsMissedWindows(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 18, 0, 30, 0, time.UTC)
	day := domain.DayOf(now)

	f := newFixture(t, now)

	missed := slotAt(domain.ActivityTweet, now.Add(-2*time.Hour), 5)
	upsertDay(t, f, day, missed)

	if err := f.d.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if got := slotStatus(t, f, day, missed.ID); got != domain.SlotStatusSkipped {
		t.Errorf("missed slot status = %s, want skipped", got)
	}
}

func TestTickIsNoOpWhenPaused(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	if err := f.settings.SetDispatchEnabled(ctx, false); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if err := f.d.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	// Paused tick must not even generate the day schedule.
	if _, err := f.schedules.GetDay(ctx, domain.DayOf(now)); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("schedule generated while paused, err = %v", err)
	}
}

func TestTickGeneratesMissingSchedule(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 0, 2, 0, 0, time.UTC)

	f := newFixture(t, now)

	if err := f.d.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	sched, err := f.schedules.GetDay(ctx, domain.DayOf(now))
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if len(sched.Slots) != domain.SlotsPerDay {
		t.Errorf("generated %d slots, want %d", len(sched.Slots), domain.SlotsPerDay)
	}
}

func TestTickPropagatesTerminalJobStatuses(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 7, 0, 0, time.UTC)
	day := domain.DayOf(now)

	f := newFixture(t, now)

	done := slotAt(domain.ActivityTweet, now.Add(-30*time.Minute), 5)
	done.Status = domain.SlotStatusInProgress
	broken := slotAt(domain.ActivityScrollEngage, now.Add(-30*time.Minute), 3)
	broken.Status = domain.SlotStatusInProgress
	upsertDay(t, f, day, done, broken)

	// Seed terminal jobs for both slots.
	for _, tc := range []struct {
		slot domain.ScheduleSlot
		fail bool
	}{
		{done, false},
		{broken, true},
	} {
		job := domain.NewSlotJob(&tc.slot, domain.JobTypePost, "alice", domain.PlatformTwitter, now.Add(-30*time.Minute))
		if err := f.jobs.Enqueue(ctx, job); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		if _, err := f.jobs.ClaimNext(ctx); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	// Claims are priority-ordered: done (5) first, broken (3) second.
	if err := f.jobs.Complete(ctx, done.ID, map[string]any{"ok": true}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := f.jobs.Fail(ctx, broken.ID, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	if err := f.d.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if got := slotStatus(t, f, day, done.ID); got != domain.SlotStatusCompleted {
		t.Errorf("completed job slot = %s, want completed", got)
	}
	if got := slotStatus(t, f, day, broken.ID); got != domain.SlotStatusFailed {
		t.Errorf("failed job slot = %s, want failed", got)
	}
}

func TestRegenerateFullReplacesDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day := domain.DayOf(now)

	f := newFixture(t, now)

	old := slotAt(domain.ActivityTweet, day, 5)
	old.Status = domain.SlotStatusCompleted
	upsertDay(t, f, day, old)

	if err := f.d.Regenerate(ctx, true); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	sched, err := f.schedules.GetDay(ctx, day)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if len(sched.Slots) != domain.SlotsPerDay {
		t.Fatalf("regenerated %d slots, want %d", len(sched.Slots), domain.SlotsPerDay)
	}
	if _, ok := sched.SlotByID(old.ID); ok {
		t.Error("full regenerate must not keep old slots")
	}
}
