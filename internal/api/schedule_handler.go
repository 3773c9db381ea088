package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/plan"
	"github.com/shaiso/Presence/internal/repo"
)

// GetSchedule возвращает расписание дня.
// GET /api/v1/schedule?date=2026-03-10 (по умолчанию — сегодня)
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	day := domain.DayOf(time.Now())

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			BadRequest(w, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = domain.DayOf(parsed)
	}

	sched, err := h.schedules.GetDay(r.Context(), day)
	if HandleRepoError(w, h.logger, err, "no schedule for this day") {
		return
	}

	Success(w, ScheduleFromDomain(sched))
}

// RegenerateSchedule перегенерирует расписание на сегодня.
// POST /api/v1/schedule/regenerate
//
// Тело опционально: {"full": true} пересоздаёт все слоты,
// по умолчанию завершённые и выполняющиеся слоты сохраняются.
func (h *Handler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(w, "invalid request body")
		return
	}

	settings, err := h.settings.GetSettings(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}
	enablement := repo.Enablement(settings)

	day := domain.DayOf(time.Now())

	var sched *domain.DaySchedule
	if req.Full {
		sched = plan.Generate(day, enablement)
	} else {
		existing, err := h.schedules.GetDay(r.Context(), day)
		switch {
		case err == nil:
			sched = plan.FillMissing(existing, enablement)
		case errors.Is(err, repo.ErrNotFound):
			sched = plan.Generate(day, enablement)
		default:
			InternalError(w, h.logger, err)
			return
		}
	}

	if err := h.schedules.UpsertDay(r.Context(), sched); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("schedule regenerated", "day", day.Format("2006-01-02"), "full", req.Full)

	Success(w, ScheduleFromDomain(sched))
}
