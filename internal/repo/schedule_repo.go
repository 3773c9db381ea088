package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Presence/internal/domain"
)

// ScheduleRepo — Postgres-реализация ScheduleStore.
//
// Расписание хранится как один jsonb-документ на день. Переход статуса
// слота выполняется одним UPDATE с условием на текущий статус —
// конкурентный тик не может применить переход дважды.
type ScheduleRepo struct {
	pool *pgxpool.Pool
}

// NewScheduleRepo создаёт новый ScheduleRepo.
func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

var _ ScheduleStore = (*ScheduleRepo)(nil)

// UpsertDay записывает расписание дня целиком.
func (r *ScheduleRepo) UpsertDay(ctx context.Context, sched *domain.DaySchedule) error {
	slotsJSON, err := json.Marshal(sched.Slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}

	query := `
		INSERT INTO day_schedules (day, slots, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (day) DO UPDATE SET slots = $2, generated_at = $3
	`
	_, err = r.pool.Exec(ctx, query, sched.Date, slotsJSON, sched.GeneratedAt)
	if err != nil {
		return fmt.Errorf("upsert day schedule: %w", err)
	}
	return nil
}

// GetDay возвращает расписание на день.
func (r *ScheduleRepo) GetDay(ctx context.Context, day time.Time) (*domain.DaySchedule, error) {
	query := `
		SELECT day, slots, generated_at
		FROM day_schedules
		WHERE day = $1
	`
	var sched domain.DaySchedule
	var slotsJSON []byte

	err := r.pool.QueryRow(ctx, query, domain.DayOf(day)).Scan(&sched.Date, &slotsJSON, &sched.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get day schedule: %w", err)
	}

	if err := json.Unmarshal(slotsJSON, &sched.Slots); err != nil {
		return nil, fmt.Errorf("unmarshal slots: %w", err)
	}
	return &sched, nil
}

// TransitionSlot атомарно переводит слот из from в to внутри jsonb-документа.
func (r *ScheduleRepo) TransitionSlot(ctx context.Context, day time.Time, slotID uuid.UUID, from, to domain.SlotStatus) error {
	query := `
		UPDATE day_schedules
		SET slots = (
			SELECT jsonb_agg(
				CASE
					WHEN slot->>'id' = $2 AND slot->>'status' = $3
					THEN jsonb_set(slot, '{status}', to_jsonb($4::text))
					ELSE slot
				END
			)
			FROM jsonb_array_elements(slots) AS slot
		)
		WHERE day = $1
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(slots) AS slot
			WHERE slot->>'id' = $2 AND slot->>'status' = $3
		  )
	`
	tag, err := r.pool.Exec(ctx, query, domain.DayOf(day), slotID.String(), string(from), string(to))
	if err != nil {
		return fmt.Errorf("transition slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}
