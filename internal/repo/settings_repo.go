package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Presence/internal/domain"
)

// Ключи control_flags.
const flagDispatchEnabled = "dispatch_enabled"

// SettingsRepo — Postgres-реализация SettingsStore.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

// NewSettingsRepo создаёт новый SettingsRepo.
func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

var _ SettingsStore = (*SettingsRepo)(nil)

// GetSettings возвращает настройки всех активностей каталога.
func (r *SettingsRepo) GetSettings(ctx context.Context) (map[domain.ActivityType]ActivitySetting, error) {
	query := `
		SELECT activity, weight, enabled, updated_at
		FROM activity_settings
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list activity settings: %w", err)
	}
	defer rows.Close()

	stored := make(map[domain.ActivityType]ActivitySetting)
	for rows.Next() {
		var s ActivitySetting
		if err := rows.Scan(&s.Activity, &s.Weight, &s.Enabled, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan activity setting: %w", err)
		}
		stored[s.Activity] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return withDefaults(stored), nil
}

// SetWeights сохраняет распределение весов одной транзакцией.
func (r *SettingsRepo) SetWeights(ctx context.Context, dist domain.Distribution) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO activity_settings (activity, weight, enabled, updated_at)
		VALUES ($1, $2, true, now())
		ON CONFLICT (activity) DO UPDATE SET weight = $2, updated_at = now()
	`
	for activity, weight := range dist {
		if _, err := tx.Exec(ctx, query, activity, weight); err != nil {
			return fmt.Errorf("upsert weight %s: %w", activity, err)
		}
	}

	return tx.Commit(ctx)
}

// SetEnabled включает или выключает активность.
func (r *SettingsRepo) SetEnabled(ctx context.Context, activity domain.ActivityType, enabled bool) error {
	weight := 0
	if d := domain.DefaultDistribution(); d[activity] > 0 {
		weight = d[activity]
	}

	query := `
		INSERT INTO activity_settings (activity, weight, enabled, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (activity) DO UPDATE SET enabled = $3, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, activity, weight, enabled); err != nil {
		return fmt.Errorf("set enabled %s: %w", activity, err)
	}
	return nil
}

// DispatchEnabled возвращает глобальный флаг диспетчеризации.
func (r *SettingsRepo) DispatchEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := r.pool.QueryRow(ctx, `
		SELECT enabled FROM control_flags WHERE key = $1
	`, flagDispatchEnabled).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		// Флаг не выставлялся — диспетчеризация включена по умолчанию.
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get dispatch flag: %w", err)
	}
	return enabled, nil
}

// SetDispatchEnabled устанавливает глобальный флаг диспетчеризации.
func (r *SettingsRepo) SetDispatchEnabled(ctx context.Context, enabled bool) error {
	query := `
		INSERT INTO control_flags (key, enabled, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET enabled = $2, updated_at = now()
	`
	if _, err := r.pool.Exec(ctx, query, flagDispatchEnabled, enabled); err != nil {
		return fmt.Errorf("set dispatch flag: %w", err)
	}
	return nil
}

// withDefaults дополняет настройки значениями по умолчанию для активностей
// каталога, у которых нет записи в хранилище.
func withDefaults(stored map[domain.ActivityType]ActivitySetting) map[domain.ActivityType]ActivitySetting {
	defaults := domain.DefaultDistribution()
	out := make(map[domain.ActivityType]ActivitySetting, len(domain.Catalog()))
	for _, info := range domain.Catalog() {
		if s, ok := stored[info.Type]; ok {
			out[info.Type] = s
			continue
		}
		out[info.Type] = ActivitySetting{
			Activity:  info.Type,
			Weight:    defaults[info.Type],
			Enabled:   true,
			UpdatedAt: time.Time{},
		}
	}
	return out
}
