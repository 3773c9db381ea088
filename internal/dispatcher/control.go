package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/repo"
)

// setupConsumers создаёт consumers управляющих команд и событий завершения.
func (d *Dispatcher) setupConsumers(conn *mq.Connection) {
	d.controlConsumer = mq.NewConsumer(conn, d.logger, mq.ConsumerConfig{
		Queue:   mq.QueueControlDispatcher,
		Handler: d.handleControl,
	})

	d.completedConsumer = mq.NewConsumer(conn, d.logger, mq.ConsumerConfig{
		Queue:          mq.QueueJobsCompleted,
		Handler:        d.handleJobCompleted,
		RequeueOnError: true,
	})
}

// StartConsumers запускает consumers. Блокирует до отмены контекста.
func (d *Dispatcher) StartConsumers(ctx context.Context) {
	if d.controlConsumer == nil {
		return
	}

	var wg sync.WaitGroup
	for _, consumer := range []*mq.Consumer{d.controlConsumer, d.completedConsumer} {
		consumer := consumer
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("consumer error", "error", err)
			}
		}()
	}
	wg.Wait()
}

// handleControl обрабатывает управляющую команду.
func (d *Dispatcher) handleControl(ctx context.Context, msg *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.ControlPayload](&msg.Message)
	if err != nil {
		return fmt.Errorf("parse control payload: %w", err)
	}

	d.logger.Info("control command received", "command", payload.Command)

	switch payload.Command {
	case mq.ControlTick:
		return d.Tick(ctx)

	case mq.ControlRegenerate:
		return d.Regenerate(ctx, payload.Full)

	case mq.ControlPause:
		return d.settings.SetDispatchEnabled(ctx, false)

	case mq.ControlResume:
		return d.settings.SetDispatchEnabled(ctx, true)

	case mq.ControlDisconnect:
		// Адресована воркерам.
		return nil

	default:
		d.logger.Warn("unknown control command", "command", payload.Command)
		return nil
	}
}

// handleJobCompleted протягивает терминальный статус job в слот,
// не дожидаясь следующего тика.
func (d *Dispatcher) handleJobCompleted(ctx context.Context, msg *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.JobCompletedPayload](&msg.Message)
	if err != nil {
		return fmt.Errorf("parse job completed payload: %w", err)
	}

	target, ok := domain.SlotStatusForJob(payload.Status)
	if !ok {
		return nil
	}

	job, err := d.jobs.GetByID(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get job %s: %w", payload.JobID, err)
	}

	day := domain.DayOf(job.CreatedAt)
	err = d.schedules.TransitionSlot(ctx, day, job.ID, domain.SlotStatusInProgress, target)
	if err != nil {
		// Слот уже переведён тиком, либо job поставлен не из расписания.
		if errors.Is(err, repo.ErrInvalidState) || errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("transition slot %s: %w", job.ID, err)
	}

	return nil
}
