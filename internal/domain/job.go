package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ключи payload, которые диспетчер кладёт в каждый job.
const (
	PayloadKeyActivity = "activity"
	PayloadKeyAccount  = "account"
	PayloadKeyPlatform = "platform"
)

// Job — durable единица работы, поставленная в очередь.
//
// Job создаётся диспетчером из слота расписания (ID job = ID слота,
// уникальность на уровне store гарантирует не более одного живого job
// на слот) либо напрямую внешним вызовом. Все переходы статусов
// выполняются атомарными операциями store — никаких read-modify-write
// на стороне клиента.
type Job struct {
	// ID — уникальный идентификатор job.
	ID uuid.UUID `json:"id"`

	// Type — тип работы.
	Type JobType `json:"type"`

	// Payload — входные данные для исполнителя.
	Payload map[string]any `json:"payload,omitempty"`

	// Status — текущий статус.
	Status JobStatus `json:"status"`

	// Priority — приоритет claim (больше = раньше).
	Priority int `json:"priority"`

	// Result — результат выполнения (заполняется при completed).
	Result map[string]any `json:"result,omitempty"`

	// Error — текст ошибки (заполняется при failed).
	Error string `json:"error,omitempty"`

	// CreatedAt — время постановки в очередь.
	CreatedAt time.Time `json:"created_at"`

	// ClaimedAt — время захвата воркером. Используется reaper'ом
	// для возврата зависших processing jobs.
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`

	// ProcessedAt — время финального перехода (completed/failed).
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// Account возвращает аккаунт из payload.
func (j *Job) Account() string {
	s, _ := j.Payload[PayloadKeyAccount].(string)
	return s
}

// Platform возвращает платформу из payload.
func (j *Job) Platform() Platform {
	s, _ := j.Payload[PayloadKeyPlatform].(string)
	return Platform(s)
}

// IsFinished возвращает true, если job завершён.
func (j *Job) IsFinished() bool {
	return j.Status.IsTerminal()
}

// MarkProcessing переводит job в статус processing.
func (j *Job) MarkProcessing() {
	now := time.Now().UTC()
	j.Status = JobStatusProcessing
	j.ClaimedAt = &now
}

// MarkCompleted переводит job в статус completed с результатом.
func (j *Job) MarkCompleted(result map[string]any) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.Result = result
	j.ProcessedAt = &now
}

// MarkFailed переводит job в статус failed с текстом ошибки.
func (j *Job) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.Error = errMsg
	j.ProcessedAt = &now
}

// NewSlotJob создаёт job из слота расписания.
// ID наследуется от слота — повторная постановка того же слота
// становится no-op на уровне store.
func NewSlotJob(slot *ScheduleSlot, jobType JobType, account string, platform Platform, now time.Time) *Job {
	return &Job{
		ID:       slot.ID,
		Type:     jobType,
		Status:   JobStatusPending,
		Priority: slot.Priority,
		Payload: map[string]any{
			PayloadKeyActivity: string(slot.Activity),
			PayloadKeyAccount:  account,
			PayloadKeyPlatform: string(platform),
		},
		CreatedAt: now.UTC(),
	}
}
