package session

import (
	"context"

	"github.com/shaiso/Presence/internal/domain"
)

// Action — одно действие на платформе.
type Action struct {
	// Name — имя действия: post, like, comment, follow и т.д.
	Name string

	// Params — параметры действия.
	Params map[string]any
}

// Context — открытая браузерная сессия платформы.
//
// Реализации не обязаны быть потокобезопасными:
// сериализацию вызовов гарантирует Session.
type Context interface {
	// Verify проверяет, что профиль авторизован.
	// Возвращает ErrLoginRequired, если авторизации нет.
	Verify(ctx context.Context) error

	// Perform выполняет действие и возвращает его результат.
	Perform(ctx context.Context, action Action) (map[string]any, error)

	// Close завершает сессию и освобождает ресурсы.
	Close() error
}

// Driver открывает сессии для платформ.
type Driver interface {
	// Open открывает сессию поверх каталога профиля.
	Open(ctx context.Context, platform domain.Platform, profileDir string) (Context, error)
}
