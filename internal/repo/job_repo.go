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

// JobRepo — Postgres-реализация JobStore.
//
// Атомарность claim обеспечивается на уровне SQL:
// UPDATE по подзапросу с FOR UPDATE SKIP LOCKED — конкурентные воркеры
// не блокируются друг о друга и никогда не получают одну запись.
type JobRepo struct {
	pool *pgxpool.Pool
}

// NewJobRepo создаёт новый JobRepo.
func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

var _ JobStore = (*JobRepo)(nil)

// Enqueue ставит job в очередь. Повторная постановка с тем же ID — no-op.
func (r *JobRepo) Enqueue(ctx context.Context, job *domain.Job) error {
	payloadJSON, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := `
		INSERT INTO jobs (id, type, payload, status, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.Type,
		payloadJSON,
		job.Status,
		job.Priority,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// ClaimNext атомарно захватывает самый приоритетный pending job.
func (r *JobRepo) ClaimNext(ctx context.Context) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1, claimed_at = now()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = $2
			ORDER BY priority DESC, created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, type, payload, status, priority, result, error,
		          created_at, claimed_at, processed_at
	`
	row := r.pool.QueryRow(ctx, query, domain.JobStatusProcessing, domain.JobStatusPending)
	return scanJob(row)
}

// Complete переводит processing job в completed с результатом.
func (r *JobRepo) Complete(ctx context.Context, id uuid.UUID, result map[string]any) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	query := `
		UPDATE jobs
		SET status = $2, result = $3, processed_at = now()
		WHERE id = $1 AND status = $4
	`
	tag, err := r.pool.Exec(ctx, query, id, domain.JobStatusCompleted, resultJSON, domain.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

// Fail переводит processing job в failed с текстом ошибки.
func (r *JobRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE jobs
		SET status = $2, error = $3, processed_at = now()
		WHERE id = $1 AND status = $4
	`
	tag, err := r.pool.Exec(ctx, query, id, domain.JobStatusFailed, errMsg, domain.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

// GetByID возвращает job по ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, type, payload, status, priority, result, error,
		       created_at, claimed_at, processed_at
		FROM jobs
		WHERE id = $1
	`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

// List возвращает последние jobs, опционально по статусу.
func (r *JobRepo) List(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, type, payload, status, priority, result, error,
		       created_at, claimed_at, processed_at
		FROM jobs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ReclaimStale возвращает зависшие processing jobs обратно в pending.
func (r *JobRepo) ReclaimStale(ctx context.Context, olderThan time.Duration) (int, error) {
	query := `
		UPDATE jobs
		SET status = $1, claimed_at = NULL
		WHERE status = $2 AND claimed_at < now() - $3::interval
	`
	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	tag, err := r.pool.Exec(ctx, query, domain.JobStatusPending, domain.JobStatusProcessing, interval)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// transitionError уточняет причину несостоявшегося перехода:
// записи нет — ErrNotFound, запись есть в другом статусе — ErrInvalidState.
func (r *JobRepo) transitionError(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrInvalidState
}

// scanJob читает job из строки результата.
func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var payloadJSON, resultJSON []byte
	var jobError *string

	err := row.Scan(
		&job.ID,
		&job.Type,
		&payloadJSON,
		&job.Status,
		&job.Priority,
		&resultJSON,
		&jobError,
		&job.CreatedAt,
		&job.ClaimedAt,
		&job.ProcessedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if payloadJSON != nil {
		if err := json.Unmarshal(payloadJSON, &job.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	if resultJSON != nil {
		if err := json.Unmarshal(resultJSON, &job.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	if jobError != nil {
		job.Error = *jobError
	}

	return &job, nil
}
