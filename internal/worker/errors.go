package worker

import "errors"

// Ошибки воркера.
var (
	// ErrUnknownJobType — нет executor'а для пары (платформа, тип задания).
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrMissingAccount — payload задания не содержит аккаунт или платформу.
	ErrMissingAccount = errors.New("job payload missing account or platform")

	// ErrPoolStopped — пул остановлен.
	ErrPoolStopped = errors.New("pool stopped")
)
