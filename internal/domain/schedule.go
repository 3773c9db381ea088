package domain

import (
	"time"

	"github.com/google/uuid"
)

// Параметры дневного расписания.
const (
	// SlotDuration — фиксированная длительность одного слота.
	SlotDuration = 15 * time.Minute

	// SlotsPerDay — количество слотов, покрывающих сутки.
	SlotsPerDay = 96
)

// ScheduleSlot — один 15-минутный сегмент дневного расписания.
//
// Создаётся пачкой генератором; переводится pending → in_progress
// диспетчером, а в completed/failed — по статусу связанного job.
// ID слота совпадает с ID job, который диспетчер ставит в очередь, —
// это и даёт идемпотентность постановки между тиками.
type ScheduleSlot struct {
	// ID — уникальный идентификатор слота (и будущего job).
	ID uuid.UUID `json:"id"`

	// Activity — назначенная активность.
	Activity ActivityType `json:"activity"`

	// StartTime — начало временного окна (UTC).
	StartTime time.Time `json:"start_time"`

	// EndTime — конец временного окна (UTC).
	EndTime time.Time `json:"end_time"`

	// Status — текущий статус слота.
	Status SlotStatus `json:"status"`

	// Priority — приоритет job, создаваемого из слота.
	Priority int `json:"priority"`
}

// IsDue проверяет, попадает ли момент now в окно слота.
func (s *ScheduleSlot) IsDue(now time.Time) bool {
	return !now.Before(s.StartTime) && !now.After(s.EndTime)
}

// DaySchedule — расписание на один календарный день.
//
// Единица хранения: один документ на день, при полной регенерации
// перезаписывается целиком. Владеет им генератор, диспетчер читает
// на каждом тике.
type DaySchedule struct {
	// Date — день расписания (полночь UTC).
	Date time.Time `json:"date"`

	// Slots — упорядоченная последовательность слотов (SlotsPerDay штук).
	Slots []ScheduleSlot `json:"slots"`

	// GeneratedAt — время генерации.
	GeneratedAt time.Time `json:"generated_at"`
}

// SlotByID возвращает слот по ID.
func (d *DaySchedule) SlotByID(id uuid.UUID) (*ScheduleSlot, bool) {
	for i := range d.Slots {
		if d.Slots[i].ID == id {
			return &d.Slots[i], true
		}
	}
	return nil, false
}

// DayOf нормализует время к началу календарного дня в UTC.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
