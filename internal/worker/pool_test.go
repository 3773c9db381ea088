package worker

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/repo"
	"github.com/shaiso/Presence/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManager(t *testing.T, authorized ...session.Key) *session.Manager {
	t.Helper()

	mgr := session.NewManager(session.Config{
		ProfilesRoot: t.TempDir(),
		Driver:       &session.LocalDriver{},
		Logger:       testLogger(),
	})

	for _, key := range authorized {
		if err := session.MarkAuthorized(mgr.ProfileDir(key), key.Account, key.Platform); err != nil {
			t.Fatalf("mark authorized %s: %v", key, err)
		}
	}

	return mgr
}

func testJob(jobType domain.JobType, account string, platform domain.Platform) *domain.Job {
	return &domain.Job{
		ID:     uuid.New(),
		Type:   jobType,
		Status: domain.JobStatusPending,
		Payload: map[string]any{
			domain.PayloadKeyAccount:  account,
			domain.PayloadKeyPlatform: string(platform),
		},
		CreatedAt: time.Now().UTC(),
	}
}

// waitTerminal polls the store until the job reaches a terminal status.
func waitTerminal(t *testing.T, store repo.JobStore, id uuid.UUID) *domain.Job {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("job %s did not finish in time", id)
		case <-time.After(10 * time.Millisecond):
		}

		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if job.IsFinished() {
			return job
		}
	}
}

func startPool(t *testing.T, store repo.JobStore, mgr *session.Manager) *Pool {
	t.Helper()

	pool := New(Config{
		Jobs:         store,
		Sessions:     mgr,
		Size:         2,
		PollInterval: 20 * time.Millisecond,
		Logger:       testLogger(),
	})
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start pool: %v", err)
	}
	t.Cleanup(pool.Stop)

	return pool
}

func TestPoolExecutesJobs(t *testing.T) {
	store := repo.NewMemoryJobStore()
	alice := session.Key{Account: "alice", Platform: domain.PlatformTwitter}
	mgr := testManager(t, alice)

	jobs := []*domain.Job{
		testJob(domain.JobTypePost, "alice", domain.PlatformTwitter),
		testJob(domain.JobTypeEngage, "alice", domain.PlatformTwitter),
		testJob(domain.JobTypeFetchAnalytics, "alice", domain.PlatformTwitter),
	}
	for _, j := range jobs {
		if err := store.Enqueue(context.Background(), j); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	startPool(t, store, mgr)

	for _, j := range jobs {
		got := waitTerminal(t, store, j.ID)
		if got.Status != domain.JobStatusCompleted {
			t.Errorf("job %s (%s): status = %s, error = %q", j.ID, j.Type, got.Status, got.Error)
		}
		if got.Result == nil {
			t.Errorf("job %s (%s): no result recorded", j.ID, j.Type)
		}
	}
}

func TestPoolFailsJobWithoutExecutor(t *testing.T) {
	store := repo.NewMemoryJobStore()
	bob := session.Key{Account: "bob", Platform: domain.PlatformLinkedIn}
	mgr := testManager(t, bob)

	// post is a twitter job; there is no executor for linkedin/post.
	job := testJob(domain.JobTypePost, "bob", domain.PlatformLinkedIn)
	if err := store.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	startPool(t, store, mgr)

	got := waitTerminal(t, store, job.ID)
	if got.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if !strings.Contains(got.Error, "unknown job type") {
		t.Errorf("error = %q, want unknown job type", got.Error)
	}
}

func TestPoolFailsJobWithoutAccount(t *testing.T) {
	store := repo.NewMemoryJobStore()
	mgr := testManager(t)

	job := &domain.Job{
		ID:        uuid.New(),
		Type:      domain.JobTypePost,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	startPool(t, store, mgr)

	got := waitTerminal(t, store, job.ID)
	if got.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if !strings.Contains(got.Error, "missing account") {
		t.Errorf("error = %q, want missing account", got.Error)
	}
}

func TestPoolFailsJobWhenLoginRequired(t *testing.T) {
	store := repo.NewMemoryJobStore()
	// No MarkAuthorized: the profile has no auth marker.
	mgr := testManager(t)

	job := testJob(domain.JobTypePost, "carol", domain.PlatformTwitter)
	if err := store.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	startPool(t, store, mgr)

	got := waitTerminal(t, store, job.ID)
	if got.Status != domain.JobStatusFailed {
		t.Fatalf("status = %s, want failed", got.Status)
	}
	if !strings.Contains(got.Error, "login required") {
		t.Errorf("error = %q, want login required", got.Error)
	}
}

func TestRegistryCoversCatalog(t *testing.T) {
	registry := NewRegistry()

	// Every non-idle catalog activity must resolve to an executor.
	for _, info := range domain.Catalog() {
		jobType, ok := info.Type.JobType()
		if !ok {
			continue
		}
		if _, err := registry.Get(info.Platform, jobType); err != nil {
			t.Errorf("no executor for %s/%s: %v", info.Platform, jobType, err)
		}
	}
}
