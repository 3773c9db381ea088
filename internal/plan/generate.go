package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Presence/internal/domain"
)

// Generate строит дневное расписание из карты включённости активностей.
//
// Кандидаты — все активности каталога с весом > 0, в каноническом порядке.
// Если включённых нет, подставляется единственный idle-кандидат: расписание
// никогда не бывает пустым. Кандидаты раскладываются по слотам round-robin —
// осознанный выбор вместо взвешенной выборки: при N кандидатах и S слотах
// каждый получает floor(S/N) или ceil(S/N) слотов, равномерно по всему дню.
func Generate(date time.Time, enablement domain.Enablement) *domain.DaySchedule {
	candidates := candidateList(enablement)
	day := domain.DayOf(date)

	slots := make([]domain.ScheduleSlot, domain.SlotsPerDay)
	for i := range slots {
		activity := candidates[i%len(candidates)]

		priority := 0
		if info, ok := domain.ActivityByType(activity); ok {
			priority = info.Priority
		}

		start := day.Add(time.Duration(i) * domain.SlotDuration)
		slots[i] = domain.ScheduleSlot{
			ID:        uuid.New(),
			Activity:  activity,
			StartTime: start,
			EndTime:   start.Add(domain.SlotDuration),
			Status:    domain.SlotStatusPending,
			Priority:  priority,
		}
	}

	return &domain.DaySchedule{
		Date:        day,
		Slots:       slots,
		GeneratedAt: time.Now().UTC(),
	}
}

// FillMissing перегенерирует расписание, сохраняя слоты, которые уже
// выполняются или завершились успешно. Остальные (pending, failed, skipped)
// заменяются свежими слотами из нового round-robin раскроя.
func FillMissing(existing *domain.DaySchedule, enablement domain.Enablement) *domain.DaySchedule {
	fresh := Generate(existing.Date, enablement)

	for i := range fresh.Slots {
		if i >= len(existing.Slots) {
			break
		}
		old := existing.Slots[i]
		if old.Status == domain.SlotStatusCompleted || old.Status == domain.SlotStatusInProgress {
			fresh.Slots[i] = old
		}
	}

	return fresh
}

// candidateList возвращает включённые активности в порядке каталога,
// либо единственный idle, если включённых нет.
func candidateList(enablement domain.Enablement) []domain.ActivityType {
	var candidates []domain.ActivityType
	for _, info := range domain.Catalog() {
		if enablement[info.Type] > 0 {
			candidates = append(candidates, info.Type)
		}
	}
	if len(candidates) == 0 {
		candidates = []domain.ActivityType{domain.ActivityIdle}
	}
	return candidates
}
