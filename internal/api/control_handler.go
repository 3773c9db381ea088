package api

import (
	"net/http"

	"github.com/shaiso/Presence/internal/mq"
)

// GetDispatchState возвращает состояние диспетчеризации.
// GET /api/v1/dispatch
func (h *Handler) GetDispatchState(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.settings.DispatchEnabled(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	Success(w, DispatchStateResponse{Enabled: enabled})
}

// PauseDispatch ставит диспетчеризацию на паузу.
// POST /api/v1/dispatch/pause
//
// Флаг хранится в БД, поэтому действует и на диспетчер в другом
// процессе с его следующего тика.
func (h *Handler) PauseDispatch(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.SetDispatchEnabled(r.Context(), false); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("dispatch paused")
	Success(w, DispatchStateResponse{Enabled: false})
}

// ResumeDispatch возобновляет диспетчеризацию.
// POST /api/v1/dispatch/resume
func (h *Handler) ResumeDispatch(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.SetDispatchEnabled(r.Context(), true); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("dispatch resumed")
	Success(w, DispatchStateResponse{Enabled: true})
}

// TriggerTick запрашивает немедленный внеплановый тик диспетчера.
// POST /api/v1/dispatch/tick
func (h *Handler) TriggerTick(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		Unavailable(w, "message queue is not connected")
		return
	}

	err := h.publisher.PublishControl(r.Context(), mq.ControlPayload{Command: mq.ControlTick})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Accepted(w, map[string]string{"command": string(mq.ControlTick)})
}
