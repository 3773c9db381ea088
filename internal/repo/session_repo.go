package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Presence/internal/domain"
)

// SessionRepo — Postgres-реализация SessionStore.
//
// Таблица sessions — реестр подключений, который ведёт session.Manager
// из процесса воркера; API читает её для внешнего наблюдения.
type SessionRepo struct {
	pool *pgxpool.Pool
}

// NewSessionRepo создаёт новый SessionRepo.
func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

var _ SessionStore = (*SessionRepo)(nil)

// UpsertSession фиксирует подключение сессии.
func (r *SessionRepo) UpsertSession(ctx context.Context, rec *SessionRecord) error {
	query := `
		INSERT INTO sessions (account, platform, profile_dir, connected_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account, platform) DO UPDATE
		SET profile_dir = $3, connected_at = $4
	`
	_, err := r.pool.Exec(ctx, query, rec.Account, rec.Platform, rec.ProfileDir, rec.ConnectedAt)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession удаляет запись о сессии.
func (r *SessionRepo) DeleteSession(ctx context.Context, account string, platform domain.Platform) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE account = $1 AND platform = $2
	`, account, platform)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListSessions возвращает все записи о сессиях.
func (r *SessionRepo) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account, platform, profile_dir, connected_at
		FROM sessions
		ORDER BY connected_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.Account, &rec.Platform, &rec.ProfileDir, &rec.ConnectedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
