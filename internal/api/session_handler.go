package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/mq"
)

// ListSessions возвращает зарегистрированные сессии.
// GET /api/v1/sessions
//
// Реестр заполняют воркеры; API видит сессии всех процессов.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	records, err := h.sessions.ListSessions(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]SessionResponse, len(records))
	for i := range records {
		result[i] = SessionFromRecord(&records[i])
	}

	List(w, result, len(result))
}

// DisconnectSession рассылает воркерам команду закрыть сессию.
// POST /api/v1/sessions/disconnect
//
// Команда асинхронна: если сессия выполняет действие, воркер
// откажет и команду нужно повторить.
func (h *Handler) DisconnectSession(w http.ResponseWriter, r *http.Request) {
	var req DisconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Account == "" {
		BadRequest(w, "account is required")
		return
	}
	switch req.Platform {
	case domain.PlatformTwitter, domain.PlatformLinkedIn:
	default:
		BadRequest(w, "invalid platform")
		return
	}

	if h.publisher == nil {
		Unavailable(w, "message queue is not connected")
		return
	}

	err := h.publisher.PublishControl(r.Context(), mq.ControlPayload{
		Command:  mq.ControlDisconnect,
		Account:  req.Account,
		Platform: req.Platform,
	})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Accepted(w, map[string]string{
		"command":  string(mq.ControlDisconnect),
		"account":  req.Account,
		"platform": string(req.Platform),
	})
}
