package domain

// SlotStatus — статус слота расписания.
//
// Жизненный цикл:
//
//	pending → in_progress → completed
//	                      ↘ failed
//	        ↘ skipped (нет маппинга активности на job, либо idle)
type SlotStatus string

const (
	// SlotStatusPending — слот ожидает своего временного окна.
	SlotStatusPending SlotStatus = "pending"

	// SlotStatusInProgress — job для слота поставлен в очередь.
	SlotStatusInProgress SlotStatus = "in_progress"

	// SlotStatusCompleted — job слота завершился успешно.
	SlotStatusCompleted SlotStatus = "completed"

	// SlotStatusFailed — job слота завершился с ошибкой.
	SlotStatusFailed SlotStatus = "failed"

	// SlotStatusSkipped — слот пропущен (idle или ошибка конфигурации).
	SlotStatusSkipped SlotStatus = "skipped"
)

// IsTerminal возвращает true, если статус финальный.
func (s SlotStatus) IsTerminal() bool {
	switch s {
	case SlotStatusCompleted, SlotStatusFailed, SlotStatusSkipped:
		return true
	default:
		return false
	}
}

// JobStatus — статус job.
//
// Жизненный цикл:
//
//	pending → processing → completed
//	                     ↘ failed
//
// Jobs никогда не удаляются, только переводятся между статусами.
type JobStatus string

const (
	// JobStatusPending — job в очереди, ожидает claim.
	JobStatusPending JobStatus = "pending"

	// JobStatusProcessing — job захвачен воркером и выполняется.
	JobStatusProcessing JobStatus = "processing"

	// JobStatusCompleted — job завершён успешно.
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed — job завершён с ошибкой. Store не делает requeue.
	JobStatusFailed JobStatus = "failed"
)

// IsTerminal возвращает true, если статус финальный.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// SlotStatusForJob переводит финальный статус job в статус слота.
// Для нефинальных статусов возвращает ok=false.
func SlotStatusForJob(s JobStatus) (SlotStatus, bool) {
	switch s {
	case JobStatusCompleted:
		return SlotStatusCompleted, true
	case JobStatusFailed:
		return SlotStatusFailed, true
	default:
		return "", false
	}
}
