package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/plan"
	"github.com/shaiso/Presence/internal/repo"
)

// GetDistribution возвращает текущее распределение активностей.
// GET /api/v1/distribution
func (h *Handler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	Success(w, DistributionFromSettings(settings))
}

// SetActivityWeight изменяет вес активности с ребалансировкой остальных.
// PUT /api/v1/distribution/{activity}
//
// Остальные веса пересчитываются пропорционально, сумма всегда 100.
func (h *Handler) SetActivityWeight(w http.ResponseWriter, r *http.Request) {
	activity := domain.ActivityType(r.PathValue("activity"))
	if _, ok := domain.ActivityByType(activity); !ok {
		BadRequest(w, "unknown activity")
		return
	}

	var req SetWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Weight == nil {
		BadRequest(w, "weight is required")
		return
	}

	settings, err := h.settings.GetSettings(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	rebalanced := plan.Rebalance(repo.Weights(settings), activity, *req.Weight)
	if err := h.settings.SetWeights(r.Context(), rebalanced); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.logger.Info("distribution rebalanced", "activity", activity, "weight", rebalanced[activity])

	settings, err = h.settings.GetSettings(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	Success(w, DistributionFromSettings(settings))
}

// SetActivityEnabled включает или выключает активность.
// PUT /api/v1/distribution/{activity}/enabled
//
// После изменения диспетчеру рассылается команда на перегенерацию
// расписания с сохранением завершённых слотов.
func (h *Handler) SetActivityEnabled(w http.ResponseWriter, r *http.Request) {
	activity := domain.ActivityType(r.PathValue("activity"))
	if _, ok := domain.ActivityByType(activity); !ok {
		BadRequest(w, "unknown activity")
		return
	}

	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Enabled == nil {
		BadRequest(w, "enabled is required")
		return
	}

	if err := h.settings.SetEnabled(r.Context(), activity, *req.Enabled); err != nil {
		if HandleRepoError(w, h.logger, err, "activity not found") {
			return
		}
	}

	h.logger.Info("activity toggled", "activity", activity, "enabled", *req.Enabled)

	if h.publisher != nil {
		err := h.publisher.PublishControl(r.Context(), mq.ControlPayload{
			Command: mq.ControlRegenerate,
			Full:    false,
		})
		if err != nil {
			h.logger.Warn("failed to publish regenerate command", "error", err)
		}
	}

	settings, err := h.settings.GetSettings(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	Success(w, DistributionFromSettings(settings))
}
