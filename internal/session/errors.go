package session

import "errors"

// Ошибки уровня сессий. Провалы действий типизированы,
// чтобы результат задания содержал осмысленную причину.
var (
	// ErrSessionBusy — сессия выполняет действие, disconnect отклонён.
	ErrSessionBusy = errors.New("session busy")

	// ErrProfileLocked — каталог профиля занят другим процессом.
	ErrProfileLocked = errors.New("profile directory locked")

	// ErrLoginRequired — профиль не содержит валидной авторизации.
	ErrLoginRequired = errors.New("login required")

	// ErrTargetNotFound — объект действия не существует (пост удалён и т.п.).
	ErrTargetNotFound = errors.New("target not found")

	// ErrRateLimited — платформа ограничила частоту действий.
	ErrRateLimited = errors.New("rate limited by platform")

	// ErrNetwork — сетевая ошибка при обращении к платформе.
	ErrNetwork = errors.New("network error")
)
