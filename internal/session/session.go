package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/shaiso/Presence/internal/domain"
)

// Key идентифицирует сессию: пара (аккаунт, платформа).
type Key struct {
	Account  string
	Platform domain.Platform
}

func (k Key) String() string {
	return k.Account + "@" + string(k.Platform)
}

// Session — одна открытая сессия с гарантией строгой сериализации.
//
// Все действия проходят через Do: пока одно действие выполняется,
// остальные ждут на мьютексе. Rate limiter добавляет паузу между
// действиями, чтобы активность не выглядела машинной.
type Session struct {
	key     Key
	drvCtx  Context
	limiter *rate.Limiter

	mu sync.Mutex
}

// newSession создаёт Session поверх открытого драйверного контекста.
// minInterval — минимальный интервал между действиями; ноль отключает лимитер.
func newSession(key Key, drvCtx Context, minInterval rate.Limit) *Session {
	var limiter *rate.Limiter
	if minInterval > 0 {
		limiter = rate.NewLimiter(minInterval, 1)
	}

	return &Session{
		key:     key,
		drvCtx:  drvCtx,
		limiter: limiter,
	}
}

// Key возвращает идентификатор сессии.
func (s *Session) Key() Key {
	return s.key
}

// Do выполняет fn с эксклюзивным доступом к сессии.
//
// Вызовы Do на одной сессии строго последовательны. fn получает
// драйверный контекст и не должен сохранять его после возврата.
func (s *Session) Do(ctx context.Context, fn func(Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	return fn(s.drvCtx)
}

// tryClose закрывает сессию, если она не занята действием.
// Возвращает ErrSessionBusy, если Do выполняется прямо сейчас.
func (s *Session) tryClose() error {
	if !s.mu.TryLock() {
		return ErrSessionBusy
	}
	defer s.mu.Unlock()

	return s.drvCtx.Close()
}
