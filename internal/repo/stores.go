package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Presence/internal/domain"
)

// JobStore — durable очередь jobs.
//
// Все мутации — атомарные операции на уровне хранилища:
// никаких read-modify-write на стороне клиента.
type JobStore interface {
	// Enqueue ставит job в очередь. Upsert по ID: если job с таким ID
	// уже существует (в любом статусе), вызов — no-op без ошибки.
	// Это даёт идемпотентность постановки слота между тиками диспетчера.
	Enqueue(ctx context.Context, job *domain.Job) error

	// ClaimNext атомарно переводит самый старый pending job
	// (приоритет по убыванию, затем created_at по возрастанию)
	// в processing и возвращает его. Два конкурентных вызова никогда
	// не получат одну и ту же запись. Если pending jobs нет —
	// возвращается ErrNotFound.
	ClaimNext(ctx context.Context) (*domain.Job, error)

	// Complete переводит processing job в completed с результатом.
	Complete(ctx context.Context, id uuid.UUID, result map[string]any) error

	// Fail переводит processing job в failed с текстом ошибки.
	// Store не делает автоматический requeue упавших jobs.
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error

	// GetByID возвращает job по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// List возвращает последние jobs (по created_at убыв.), опционально
	// отфильтрованные по статусу (пустой статус — без фильтра).
	List(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error)

	// ReclaimStale возвращает в pending jobs, зависшие в processing
	// дольше порога (воркер упал, не завершив работу). Возвращает
	// количество возвращённых jobs.
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// ScheduleStore — хранилище дневных расписаний: один документ на день.
type ScheduleStore interface {
	// UpsertDay записывает расписание дня целиком (полная замена).
	UpsertDay(ctx context.Context, sched *domain.DaySchedule) error

	// GetDay возвращает расписание на день (day — полночь UTC).
	GetDay(ctx context.Context, day time.Time) (*domain.DaySchedule, error)

	// TransitionSlot атомарно переводит слот из статуса from в to.
	// Если слот не найден или его статус не равен from — ErrInvalidState.
	TransitionSlot(ctx context.Context, day time.Time, slotID uuid.UUID, from, to domain.SlotStatus) error
}

// ActivitySetting — настройка одной активности.
type ActivitySetting struct {
	Activity  domain.ActivityType `json:"activity"`
	Weight    int                 `json:"weight"`
	Enabled   bool                `json:"enabled"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// SettingsStore — хранилище операторских настроек: веса и включённость
// активностей плюс глобальный флаг диспетчеризации.
type SettingsStore interface {
	// GetSettings возвращает настройки всех активностей каталога.
	// Для активностей без записи возвращаются значения по умолчанию
	// (вес из DefaultDistribution, enabled=true).
	GetSettings(ctx context.Context) (map[domain.ActivityType]ActivitySetting, error)

	// SetWeights сохраняет распределение весов целиком (одной транзакцией).
	SetWeights(ctx context.Context, dist domain.Distribution) error

	// SetEnabled включает или выключает активность.
	SetEnabled(ctx context.Context, activity domain.ActivityType, enabled bool) error

	// DispatchEnabled возвращает глобальный флаг диспетчеризации.
	// Отсутствие записи трактуется как true.
	DispatchEnabled(ctx context.Context) (bool, error)

	// SetDispatchEnabled устанавливает глобальный флаг диспетчеризации.
	SetDispatchEnabled(ctx context.Context, enabled bool) error
}

// SessionStore — реестр подключённых сессий автоматизации,
// доступный на чтение внешним наблюдателям (API).
type SessionStore interface {
	// UpsertSession фиксирует подключение сессии.
	UpsertSession(ctx context.Context, rec *SessionRecord) error

	// DeleteSession удаляет запись о сессии.
	DeleteSession(ctx context.Context, account string, platform domain.Platform) error

	// ListSessions возвращает все записи о сессиях.
	ListSessions(ctx context.Context) ([]SessionRecord, error)
}

// SessionRecord — запись о подключённой сессии.
type SessionRecord struct {
	Account     string          `json:"account"`
	Platform    domain.Platform `json:"platform"`
	ProfileDir  string          `json:"profile_dir"`
	ConnectedAt time.Time       `json:"connected_at"`
}

// Enablement собирает карту включённости для генератора:
// эффективный вес активности, 0 для выключенных.
func Enablement(settings map[domain.ActivityType]ActivitySetting) domain.Enablement {
	enablement := make(domain.Enablement, len(settings))
	for activity, s := range settings {
		if s.Enabled {
			enablement[activity] = s.Weight
		}
	}
	return enablement
}

// Weights собирает распределение весов из настроек.
func Weights(settings map[domain.ActivityType]ActivitySetting) domain.Distribution {
	dist := make(domain.Distribution, len(settings))
	for activity, s := range settings {
		dist[activity] = s.Weight
	}
	return dist
}
