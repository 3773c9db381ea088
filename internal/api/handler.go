package api

import (
	"log/slog"

	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	settings  repo.SettingsStore
	schedules repo.ScheduleStore
	jobs      repo.JobStore
	sessions  repo.SessionStore
	publisher *mq.Publisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Settings  repo.SettingsStore
	Schedules repo.ScheduleStore
	Jobs      repo.JobStore
	Sessions  repo.SessionStore

	// Publisher — опционален; без него недоступны команды,
	// требующие RabbitMQ (tick, disconnect).
	Publisher *mq.Publisher

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		settings:  cfg.Settings,
		schedules: cfg.Schedules,
		jobs:      cfg.Jobs,
		sessions:  cfg.Sessions,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}
