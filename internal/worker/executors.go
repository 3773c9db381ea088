package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/session"
)

// PostExecutor публикует пост (tweet).
type PostExecutor struct{}

var _ Executor = (*PostExecutor)(nil)

func (e *PostExecutor) Execute(ctx context.Context, drv session.Context, job *domain.Job) (map[string]any, error) {
	text, _ := job.Payload["text"].(string)
	if text == "" {
		// Без готового текста публикуем плановый пост из очереди черновиков.
		text = fmt.Sprintf("scheduled post %s", time.Now().UTC().Format("2006-01-02 15:04"))
	}

	result, err := drv.Perform(ctx, session.Action{
		Name:   "post",
		Params: map[string]any{"text": text},
	})
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}

	return result, nil
}

// EngageExecutor имитирует живое присутствие: лента, лайки, комментарии.
type EngageExecutor struct{}

var _ Executor = (*EngageExecutor)(nil)

func (e *EngageExecutor) Execute(ctx context.Context, drv session.Context, job *domain.Job) (map[string]any, error) {
	// Сценарий из нескольких действий; все идут через один драйверный
	// контекст и потому строго последовательны.
	steps := []session.Action{
		{Name: "scroll_feed", Params: map[string]any{"screens": 3}},
		{Name: "like", Params: map[string]any{"count": 2}},
		{Name: "comment", Params: map[string]any{"count": 1}},
	}

	performed := make([]string, 0, len(steps))
	for _, action := range steps {
		if _, err := drv.Perform(ctx, action); err != nil {
			return nil, fmt.Errorf("engage %s: %w", action.Name, err)
		}
		performed = append(performed, action.Name)
	}

	return map[string]any{"performed": performed}, nil
}

// FollowExecutor отправляет запросы на подключение (LinkedIn).
type FollowExecutor struct{}

var _ Executor = (*FollowExecutor)(nil)

func (e *FollowExecutor) Execute(ctx context.Context, drv session.Context, job *domain.Job) (map[string]any, error) {
	count, _ := job.Payload["count"].(float64)
	if count <= 0 {
		count = 3
	}

	result, err := drv.Perform(ctx, session.Action{
		Name:   "follow_connect",
		Params: map[string]any{"count": int(count)},
	})
	if err != nil {
		return nil, fmt.Errorf("follow: %w", err)
	}

	return result, nil
}

// ScanExecutor просматривает уведомления.
type ScanExecutor struct{}

var _ Executor = (*ScanExecutor)(nil)

func (e *ScanExecutor) Execute(ctx context.Context, drv session.Context, job *domain.Job) (map[string]any, error) {
	result, err := drv.Perform(ctx, session.Action{
		Name: "scan_notifications",
	})
	if err != nil {
		return nil, fmt.Errorf("scan notifications: %w", err)
	}

	return result, nil
}

// AnalyticsExecutor собирает статистику аккаунта.
type AnalyticsExecutor struct{}

var _ Executor = (*AnalyticsExecutor)(nil)

func (e *AnalyticsExecutor) Execute(ctx context.Context, drv session.Context, job *domain.Job) (map[string]any, error) {
	result, err := drv.Perform(ctx, session.Action{
		Name:   "fetch_analytics",
		Params: map[string]any{"period": "24h"},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch analytics: %w", err)
	}

	return result, nil
}
