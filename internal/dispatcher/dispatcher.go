package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/plan"
	"github.com/shaiso/Presence/internal/repo"
	"github.com/shaiso/Presence/internal/telemetry"
)

// defaultStaleAfter — порог, после которого processing job считается зависшим.
const defaultStaleAfter = 30 * time.Minute

// Dispatcher превращает наступившие слоты расписания в задания.
type Dispatcher struct {
	jobs      repo.JobStore
	schedules repo.ScheduleStore
	settings  repo.SettingsStore
	publisher *mq.Publisher

	// accounts — аккаунт на платформу. Слот платформы без аккаунта
	// помечается skipped.
	accounts map[domain.Platform]string

	staleAfter time.Duration
	logger     *slog.Logger

	// now подменяется в тестах.
	now func() time.Time

	controlConsumer   *mq.Consumer
	completedConsumer *mq.Consumer
}

// Config — конфигурация Dispatcher.
type Config struct {
	Jobs      repo.JobStore
	Schedules repo.ScheduleStore
	Settings  repo.SettingsStore

	// Publisher и Conn — RabbitMQ, оба опциональны.
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// Accounts — аккаунт на платформу.
	Accounts map[domain.Platform]string

	// StaleAfter — порог reaper'а (default: 30m).
	StaleAfter time.Duration

	Logger *slog.Logger

	// NowFunc подменяет источник времени (для тестов).
	NowFunc func() time.Time
}

// New создаёт Dispatcher.
func New(cfg Config) *Dispatcher {
	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.NowFunc
	if now == nil {
		now = time.Now
	}

	d := &Dispatcher{
		jobs:       cfg.Jobs,
		schedules:  cfg.Schedules,
		settings:   cfg.Settings,
		publisher:  cfg.Publisher,
		accounts:   cfg.Accounts,
		staleAfter: staleAfter,
		logger:     logger,
		now:        now,
	}

	if cfg.Conn != nil {
		d.setupConsumers(cfg.Conn)
	}

	return d
}

// Tick выполняет один тик диспетчера.
//
// 1. Проверяет флаг dispatch_enabled (пауза — полный no-op)
// 2. Гарантирует наличие расписания на сегодня
// 3. Возвращает зависшие processing jobs в очередь
// 4. Протягивает терминальные статусы jobs в слоты
// 5. Ставит задания для наступивших pending слотов
//
// Ошибки store прерывают тик: лучше опоздать, чем разойтись с БД.
func (d *Dispatcher) Tick(ctx context.Context) error {
	enabled, err := d.settings.DispatchEnabled(ctx)
	if err != nil {
		return fmt.Errorf("read dispatch flag: %w", err)
	}
	if !enabled {
		d.logger.Debug("dispatch paused, tick skipped")
		return nil
	}

	telemetry.DispatchTicks.Inc()

	now := d.now().UTC()
	day := domain.DayOf(now)

	sched, err := d.ensureDay(ctx, day)
	if err != nil {
		return err
	}

	if n, err := d.jobs.ReclaimStale(ctx, d.staleAfter); err != nil {
		return fmt.Errorf("reclaim stale jobs: %w", err)
	} else if n > 0 {
		d.logger.Warn("reclaimed stale jobs", "count", n)
	}

	if err := d.propagate(ctx, sched); err != nil {
		return err
	}

	return d.dispatchDue(ctx, sched, now)
}

// ensureDay возвращает расписание дня, генерируя его при отсутствии.
func (d *Dispatcher) ensureDay(ctx context.Context, day time.Time) (*domain.DaySchedule, error) {
	sched, err := d.schedules.GetDay(ctx, day)
	if err == nil {
		return sched, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("get day schedule: %w", err)
	}

	return d.regenerateDay(ctx, day, true)
}

// Regenerate перегенерирует расписание на сегодня.
//
// full=true — слоты создаются заново; full=false — завершённые
// и выполняющиеся слоты сохраняются, остальные заполняются заново.
func (d *Dispatcher) Regenerate(ctx context.Context, full bool) error {
	day := domain.DayOf(d.now().UTC())
	_, err := d.regenerateDay(ctx, day, full)
	return err
}

func (d *Dispatcher) regenerateDay(ctx context.Context, day time.Time, full bool) (*domain.DaySchedule, error) {
	settings, err := d.settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	enablement := repo.Enablement(settings)

	var sched *domain.DaySchedule
	if full {
		sched = plan.Generate(day, enablement)
	} else {
		existing, err := d.schedules.GetDay(ctx, day)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("get day schedule: %w", err)
			}
			existing = nil
		}
		if existing == nil {
			sched = plan.Generate(day, enablement)
		} else {
			sched = plan.FillMissing(existing, enablement)
		}
	}

	if err := d.schedules.UpsertDay(ctx, sched); err != nil {
		return nil, fmt.Errorf("upsert day schedule: %w", err)
	}

	d.logger.Info("schedule generated", "day", day.Format("2006-01-02"), "full", full)
	return sched, nil
}

// propagate протягивает терминальные статусы jobs в слоты расписания.
func (d *Dispatcher) propagate(ctx context.Context, sched *domain.DaySchedule) error {
	for i := range sched.Slots {
		slot := &sched.Slots[i]
		if slot.Status != domain.SlotStatusInProgress {
			continue
		}

		job, err := d.jobs.GetByID(ctx, slot.ID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				d.logger.Warn("slot in progress but job missing", "slot_id", slot.ID)
				continue
			}
			return fmt.Errorf("get job %s: %w", slot.ID, err)
		}

		target, ok := domain.SlotStatusForJob(job.Status)
		if !ok {
			continue
		}

		err = d.schedules.TransitionSlot(ctx, sched.Date, slot.ID, domain.SlotStatusInProgress, target)
		if err != nil && !errors.Is(err, repo.ErrInvalidState) {
			return fmt.Errorf("transition slot %s: %w", slot.ID, err)
		}
		slot.Status = target
	}

	return nil
}

// dispatchDue ставит задания для наступивших pending слотов.
func (d *Dispatcher) dispatchDue(ctx context.Context, sched *domain.DaySchedule, now time.Time) error {
	var dispatched, skipped int

	for i := range sched.Slots {
		slot := &sched.Slots[i]
		if slot.Status != domain.SlotStatusPending {
			continue
		}

		// Окно прошло, пока диспетчер не работал: слот уже не выполнить.
		if now.After(slot.EndTime) {
			if err := d.skipSlot(ctx, sched.Date, slot, "window missed"); err != nil {
				return err
			}
			skipped++
			continue
		}

		if !slot.IsDue(now) {
			continue
		}

		jobType, ok := slot.Activity.JobType()
		if !ok {
			// idle и прочие неисполняемые активности
			if err := d.skipSlot(ctx, sched.Date, slot, "no job mapping"); err != nil {
				return err
			}
			skipped++
			continue
		}

		info, ok := domain.ActivityByType(slot.Activity)
		if !ok {
			if err := d.skipSlot(ctx, sched.Date, slot, "unknown activity"); err != nil {
				return err
			}
			skipped++
			continue
		}

		account := d.accounts[info.Platform]
		if account == "" {
			if err := d.skipSlot(ctx, sched.Date, slot, "no account for platform"); err != nil {
				return err
			}
			skipped++
			continue
		}

		// Сначала enqueue, потом перевод слота: постановка идемпотентна
		// (ID job = ID слота), падение между шагами переиграет следующий тик.
		job := domain.NewSlotJob(slot, jobType, account, info.Platform, now)
		if err := d.jobs.Enqueue(ctx, job); err != nil {
			return fmt.Errorf("enqueue job for slot %s: %w", slot.ID, err)
		}

		err := d.schedules.TransitionSlot(ctx, sched.Date, slot.ID, domain.SlotStatusPending, domain.SlotStatusInProgress)
		if err != nil {
			if errors.Is(err, repo.ErrInvalidState) {
				// Конкурентный диспетчер успел раньше.
				continue
			}
			return fmt.Errorf("transition slot %s: %w", slot.ID, err)
		}
		slot.Status = domain.SlotStatusInProgress

		telemetry.SlotsDispatched.WithLabelValues(string(slot.Activity)).Inc()
		dispatched++

		if d.publisher != nil {
			if err := d.publisher.PublishJobEnqueued(ctx, job); err != nil {
				// Подсказка воркерам; задание подхватит их polling.
				d.logger.Warn("failed to publish job enqueued", "job_id", job.ID, "error", err)
			}
		}
	}

	if dispatched > 0 || skipped > 0 {
		d.logger.Info("dispatcher tick completed", "dispatched", dispatched, "skipped", skipped)
	}

	return nil
}

// skipSlot помечает слот skipped.
func (d *Dispatcher) skipSlot(ctx context.Context, day time.Time, slot *domain.ScheduleSlot, reason string) error {
	err := d.schedules.TransitionSlot(ctx, day, slot.ID, domain.SlotStatusPending, domain.SlotStatusSkipped)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidState) {
			return nil
		}
		return fmt.Errorf("skip slot %s: %w", slot.ID, err)
	}

	slot.Status = domain.SlotStatusSkipped
	telemetry.SlotsSkipped.WithLabelValues(string(slot.Activity)).Inc()
	d.logger.Debug("slot skipped", "slot_id", slot.ID, "activity", slot.Activity, "reason", reason)

	return nil
}
