package worker

import (
	"context"
	"fmt"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/session"
)

// Executor выполняет один тип задания на одной платформе.
//
// drv — драйверный контекст сессии аккаунта. Executor вызывается
// внутри Session.Do, поэтому ему гарантирован эксклюзивный доступ.
// Возвращённая map становится результатом задания.
type Executor interface {
	Execute(ctx context.Context, drv session.Context, job *domain.Job) (map[string]any, error)
}

// registryKey — ключ реестра: платформа + тип задания.
type registryKey struct {
	platform domain.Platform
	jobType  domain.JobType
}

// Registry — реестр executor'ов.
type Registry struct {
	executors map[registryKey]Executor
}

// NewRegistry создаёт реестр со стандартным набором executor'ов.
func NewRegistry() *Registry {
	r := &Registry{executors: make(map[registryKey]Executor)}

	r.Register(domain.PlatformTwitter, domain.JobTypePost, &PostExecutor{})
	r.Register(domain.PlatformTwitter, domain.JobTypeEngage, &EngageExecutor{})
	r.Register(domain.PlatformTwitter, domain.JobTypeFetchAnalytics, &AnalyticsExecutor{})
	r.Register(domain.PlatformLinkedIn, domain.JobTypeFollow, &FollowExecutor{})
	r.Register(domain.PlatformLinkedIn, domain.JobTypeScanNotifications, &ScanExecutor{})

	return r
}

// Register добавляет executor для пары (платформа, тип задания).
func (r *Registry) Register(platform domain.Platform, jobType domain.JobType, executor Executor) {
	r.executors[registryKey{platform: platform, jobType: jobType}] = executor
}

// Get возвращает executor для пары (платформа, тип задания).
func (r *Registry) Get(platform domain.Platform, jobType domain.JobType) (Executor, error) {
	executor, ok := r.executors[registryKey{platform: platform, jobType: jobType}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownJobType, platform, jobType)
	}
	return executor, nil
}
