package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shaiso/Presence/internal/repo"
	"github.com/shaiso/Presence/internal/telemetry"
)

// Config — конфигурация менеджера сессий.
type Config struct {
	// ProfilesRoot — корневой каталог профилей.
	// Профиль живёт в ProfilesRoot/<platform>/<account>.
	ProfilesRoot string

	// Driver открывает сессии.
	Driver Driver

	// Store — реестр открытых сессий в БД (может быть nil).
	// Нужен, чтобы API мог показать сессии чужого процесса.
	Store repo.SessionStore

	// MinActionInterval — минимальный интервал между действиями сессии.
	MinActionInterval time.Duration

	// Logger для событий менеджера.
	Logger *slog.Logger
}

// entry — слот реестра для одной пары (аккаунт, платформа).
// Мьютекс слота сериализует открытие: конкурентные Get по одному
// ключу не откроют две сессии.
type entry struct {
	mu   sync.Mutex
	sess *Session
	lock *profileLock
}

// Manager — реестр сессий с ленивой инициализацией.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	entries map[Key]*entry
}

// NewManager создаёт менеджер сессий.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:     cfg,
		logger:  cfg.Logger,
		entries: make(map[Key]*entry),
	}
}

// ProfileDir возвращает каталог профиля для ключа.
func (m *Manager) ProfileDir(key Key) string {
	return filepath.Join(m.cfg.ProfilesRoot, string(key.Platform), key.Account)
}

// Get возвращает сессию для ключа, открывая её при первом обращении.
//
// Неудачное открытие не кэшируется: следующий Get попробует снова.
func (m *Manager) Get(ctx context.Context, key Key) (*Session, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	m.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess != nil {
		return e.sess, nil
	}

	sess, lock, err := m.open(ctx, key)
	if err != nil {
		return nil, err
	}

	e.sess = sess
	e.lock = lock
	return sess, nil
}

// open открывает новую сессию: блокировка профиля, драйвер, verify.
func (m *Manager) open(ctx context.Context, key Key) (*Session, *profileLock, error) {
	profileDir := m.ProfileDir(key)

	lock, err := acquireProfileLock(profileDir)
	if err != nil {
		return nil, nil, err
	}

	drvCtx, err := m.cfg.Driver.Open(ctx, key.Platform, profileDir)
	if err != nil {
		lock.release()
		return nil, nil, fmt.Errorf("open session %s: %w", key, err)
	}

	if err := drvCtx.Verify(ctx); err != nil {
		drvCtx.Close()
		lock.release()
		return nil, nil, fmt.Errorf("verify session %s: %w", key, err)
	}

	var minInterval rate.Limit
	if m.cfg.MinActionInterval > 0 {
		minInterval = rate.Every(m.cfg.MinActionInterval)
	}

	sess := newSession(key, drvCtx, minInterval)

	if m.cfg.Store != nil {
		rec := &repo.SessionRecord{
			Account:     key.Account,
			Platform:    key.Platform,
			ProfileDir:  profileDir,
			ConnectedAt: time.Now().UTC(),
		}
		if err := m.cfg.Store.UpsertSession(ctx, rec); err != nil {
			// Реестр в БД — вспомогательный; сессия важнее записи о ней.
			m.logger.Warn("failed to record session", "session", key.String(), "error", err)
		}
	}

	telemetry.SessionsActive.Inc()
	m.logger.Info("session opened", "session", key.String())

	return sess, lock, nil
}

// Disconnect закрывает сессию по ключу и стирает её профиль:
// следующий Get потребует логина заново.
//
// Если сессия выполняет действие, возвращает ErrSessionBusy
// и ничего не меняет: действие не прерывается на середине.
func (m *Manager) Disconnect(ctx context.Context, key Key) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()

	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return nil
	}

	if err := e.sess.tryClose(); err != nil {
		return err
	}

	m.release(ctx, key, e)

	if err := os.RemoveAll(m.ProfileDir(key)); err != nil {
		return fmt.Errorf("erase profile %s: %w", key, err)
	}
	return nil
}

// release снимает блокировку профиля и чистит реестры.
// Вызывается под e.mu.
func (m *Manager) release(ctx context.Context, key Key, e *entry) {
	if e.lock != nil {
		if err := e.lock.release(); err != nil {
			m.logger.Warn("failed to release profile lock", "session", key.String(), "error", err)
		}
	}

	e.sess = nil
	e.lock = nil

	if m.cfg.Store != nil {
		if err := m.cfg.Store.DeleteSession(ctx, key.Account, key.Platform); err != nil {
			m.logger.Warn("failed to delete session record", "session", key.String(), "error", err)
		}
	}

	telemetry.SessionsActive.Dec()
	m.logger.Info("session closed", "session", key.String())
}

// List возвращает ключи открытых сессий этого процесса.
func (m *Manager) List() []Key {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]Key, 0, len(m.entries))
	for key, e := range m.entries {
		e.mu.Lock()
		open := e.sess != nil
		e.mu.Unlock()
		if open {
			keys = append(keys, key)
		}
	}
	return keys
}

// Close закрывает все сессии. Ждёт завершения текущих действий.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	entries := make(map[Key]*entry, len(m.entries))
	for k, e := range m.entries {
		entries[k] = e
	}
	m.mu.Unlock()

	var firstErr error
	for key, e := range entries {
		e.mu.Lock()
		if e.sess != nil {
			// Дожидаемся текущего действия через мьютекс сессии.
			e.sess.mu.Lock()
			err := e.sess.drvCtx.Close()
			e.sess.mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			m.release(ctx, key, e)
		}
		e.mu.Unlock()
	}

	return firstErr
}
