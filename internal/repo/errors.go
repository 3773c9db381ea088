package repo

import "errors"

// Общие ошибки хранилищ.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState — переход невозможен из текущего статуса
	// (например, слот уже не pending, или job не в processing).
	ErrInvalidState = errors.New("invalid state")
)
