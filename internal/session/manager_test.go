package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Presence/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeContext counts overlapping Perform calls to catch serialization bugs.
type fakeContext struct {
	active  atomic.Int32
	overlap atomic.Bool
	calls   atomic.Int32
	closed  atomic.Bool
}

func (c *fakeContext) Verify(_ context.Context) error { return nil }

func (c *fakeContext) Perform(_ context.Context, _ Action) (map[string]any, error) {
	if c.active.Add(1) > 1 {
		c.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	c.active.Add(-1)
	c.calls.Add(1)
	return map[string]any{"ok": true}, nil
}

func (c *fakeContext) Close() error {
	c.closed.Store(true)
	return nil
}

type fakeDriver struct {
	mu       sync.Mutex
	contexts []*fakeContext
}

func (d *fakeDriver) Open(_ context.Context, _ domain.Platform, _ string) (Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := &fakeContext{}
	d.contexts = append(d.contexts, c)
	return c, nil
}

func newTestManager(t *testing.T, driver Driver) *Manager {
	t.Helper()
	return NewManager(Config{
		ProfilesRoot: t.TempDir(),
		Driver:       driver,
		Logger:       testLogger(),
	})
}

func TestSessionSerializesActions(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{}
	mgr := newTestManager(t, driver)

	sess, err := mgr.Get(ctx, Key{Account: "alice", Platform: domain.PlatformTwitter})
	if err != nil {
		t.Fatalf("get session: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sess.Do(ctx, func(drv Context) error {
				_, err := drv.Perform(ctx, Action{Name: "like"})
				return err
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
		}()
	}
	wg.Wait()

	fc := driver.contexts[0]
	if fc.overlap.Load() {
		t.Error("actions on one session overlapped")
	}
	if got := fc.calls.Load(); got != n {
		t.Errorf("performed %d actions, want %d", got, n)
	}
}

func TestManagerReturnsOneSessionPerKey(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{}
	mgr := newTestManager(t, driver)

	key := Key{Account: "alice", Platform: domain.PlatformTwitter}

	// Concurrent Gets for the same key must not open two sessions.
	const n = 8
	sessions := make([]*Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := mgr.Get(ctx, key)
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("Get returned different sessions for the same key")
		}
	}
	if len(driver.contexts) != 1 {
		t.Errorf("driver opened %d contexts, want 1", len(driver.contexts))
	}

	other, err := mgr.Get(ctx, Key{Account: "alice", Platform: domain.PlatformLinkedIn})
	if err != nil {
		t.Fatalf("get other platform: %v", err)
	}
	if other == sessions[0] {
		t.Error("different platforms must get different sessions")
	}
}

func TestDisconnectRefusesBusySession(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{}
	mgr := newTestManager(t, driver)

	key := Key{Account: "alice", Platform: domain.PlatformTwitter}
	sess, err := mgr.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.Do(ctx, func(Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	if err := mgr.Disconnect(ctx, key); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("disconnect during action: err = %v, want ErrSessionBusy", err)
	}

	close(release)
	<-done

	if err := mgr.Disconnect(ctx, key); err != nil {
		t.Fatalf("disconnect idle session: %v", err)
	}
	if !driver.contexts[0].closed.Load() {
		t.Error("driver context not closed on disconnect")
	}
	if _, err := os.Stat(mgr.ProfileDir(key)); !os.IsNotExist(err) {
		t.Error("profile dir not erased on disconnect")
	}

	// Session can be reopened after disconnect.
	if _, err := mgr.Get(ctx, key); err != nil {
		t.Fatalf("get after disconnect: %v", err)
	}
	if len(driver.contexts) != 2 {
		t.Errorf("driver opened %d contexts, want 2 after reconnect", len(driver.contexts))
	}
}

func TestGetFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(Config{
		ProfilesRoot: t.TempDir(),
		Driver:       &LocalDriver{},
		Logger:       testLogger(),
	})

	key := Key{Account: "bob", Platform: domain.PlatformLinkedIn}

	// Unauthorized profile: Get must fail with ErrLoginRequired.
	if _, err := mgr.Get(ctx, key); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("get without auth: err = %v, want ErrLoginRequired", err)
	}

	if err := MarkAuthorized(mgr.ProfileDir(key), key.Account, key.Platform); err != nil {
		t.Fatalf("mark authorized: %v", err)
	}

	// The failed attempt must not poison the registry.
	if _, err := mgr.Get(ctx, key); err != nil {
		t.Fatalf("get after login: %v", err)
	}
}

func TestProfileLockIsExclusive(t *testing.T) {
	dir := t.TempDir()

	lock, err := acquireProfileLock(dir)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := acquireProfileLock(dir); !errors.Is(err, ErrProfileLocked) {
		t.Errorf("second acquire: err = %v, want ErrProfileLocked", err)
	}

	if err := lock.release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	relock, err := acquireProfileLock(dir)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	relock.release()
}

func TestLocalDriverRecordsActions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if err := MarkAuthorized(dir, "alice", domain.PlatformTwitter); err != nil {
		t.Fatalf("mark authorized: %v", err)
	}

	driver := &LocalDriver{}
	drvCtx, err := driver.Open(ctx, domain.PlatformTwitter, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer drvCtx.Close()

	if err := drvCtx.Verify(ctx); err != nil {
		t.Fatalf("verify: %v", err)
	}

	result, err := drvCtx.Perform(ctx, Action{Name: "post", Params: map[string]any{"text": "hello"}})
	if err != nil {
		t.Fatalf("perform: %v", err)
	}
	if result["action"] != "post" {
		t.Errorf("result action = %v, want post", result["action"])
	}
}

func TestLocalDriverFailModes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	driver := &LocalDriver{}
	drvCtx, err := driver.Open(ctx, domain.PlatformTwitter, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer drvCtx.Close()

	cases := []struct {
		mode string
		want error
	}{
		{"target_not_found", ErrTargetNotFound},
		{"rate_limited", ErrRateLimited},
		{"network", ErrNetwork},
	}
	for _, tc := range cases {
		_, err := drvCtx.Perform(ctx, Action{Name: "like", Params: map[string]any{"fail": tc.mode}})
		if !errors.Is(err, tc.want) {
			t.Errorf("fail mode %s: err = %v, want %v", tc.mode, err, tc.want)
		}
	}
}
