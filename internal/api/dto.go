package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/repo"
)

// Distribution DTOs

// ActivitySettingResponse — настройка одной активности.
type ActivitySettingResponse struct {
	Activity  domain.ActivityType `json:"activity"`
	Platform  domain.Platform     `json:"platform"`
	Weight    int                 `json:"weight"`
	Enabled   bool                `json:"enabled"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// DistributionResponse — распределение активностей целиком.
type DistributionResponse struct {
	Activities  []ActivitySettingResponse `json:"activities"`
	TotalWeight int                       `json:"total_weight"`
}

// DistributionFromSettings конвертирует настройки в DistributionResponse.
// Активности идут в порядке каталога.
func DistributionFromSettings(settings map[domain.ActivityType]repo.ActivitySetting) DistributionResponse {
	resp := DistributionResponse{}

	for _, info := range domain.Catalog() {
		setting, ok := settings[info.Type]
		if !ok {
			continue
		}
		resp.Activities = append(resp.Activities, ActivitySettingResponse{
			Activity:  info.Type,
			Platform:  info.Platform,
			Weight:    setting.Weight,
			Enabled:   setting.Enabled,
			UpdatedAt: setting.UpdatedAt,
		})
		resp.TotalWeight += setting.Weight
	}

	return resp
}

// SetWeightRequest — запрос на изменение веса активности.
type SetWeightRequest struct {
	Weight *int `json:"weight"`
}

// SetEnabledRequest — запрос на включение/выключение активности.
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// Schedule DTOs

// SlotResponse — один слот расписания.
type SlotResponse struct {
	ID        uuid.UUID           `json:"id"`
	Activity  domain.ActivityType `json:"activity"`
	StartTime time.Time           `json:"start_time"`
	EndTime   time.Time           `json:"end_time"`
	Status    domain.SlotStatus   `json:"status"`
	Priority  int                 `json:"priority"`
}

// ScheduleResponse — расписание дня.
type ScheduleResponse struct {
	Date        time.Time      `json:"date"`
	GeneratedAt time.Time      `json:"generated_at"`
	Slots       []SlotResponse `json:"slots"`
}

// ScheduleFromDomain конвертирует domain.DaySchedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.DaySchedule) ScheduleResponse {
	resp := ScheduleResponse{
		Date:        s.Date,
		GeneratedAt: s.GeneratedAt,
		Slots:       make([]SlotResponse, len(s.Slots)),
	}

	for i := range s.Slots {
		slot := &s.Slots[i]
		resp.Slots[i] = SlotResponse{
			ID:        slot.ID,
			Activity:  slot.Activity,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Status:    slot.Status,
			Priority:  slot.Priority,
		}
	}

	return resp
}

// RegenerateRequest — запрос на перегенерацию расписания.
type RegenerateRequest struct {
	// Full=true пересоздаёт все слоты; false сохраняет
	// завершённые и выполняющиеся.
	Full bool `json:"full"`
}

// Job DTOs

// JobResponse — задание.
type JobResponse struct {
	ID          uuid.UUID        `json:"id"`
	Type        domain.JobType   `json:"type"`
	Status      domain.JobStatus `json:"status"`
	Priority    int              `json:"priority"`
	Payload     map[string]any   `json:"payload,omitempty"`
	Result      map[string]any   `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ClaimedAt   *time.Time       `json:"claimed_at,omitempty"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
}

// JobFromDomain конвертирует domain.Job в JobResponse.
func JobFromDomain(j *domain.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		Type:        j.Type,
		Status:      j.Status,
		Priority:    j.Priority,
		Payload:     j.Payload,
		Result:      j.Result,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		ClaimedAt:   j.ClaimedAt,
		ProcessedAt: j.ProcessedAt,
	}
}

// Dispatch DTOs

// DispatchStateResponse — состояние диспетчеризации.
type DispatchStateResponse struct {
	Enabled bool `json:"enabled"`
}

// Session DTOs

// SessionResponse — зарегистрированная сессия.
type SessionResponse struct {
	Account     string          `json:"account"`
	Platform    domain.Platform `json:"platform"`
	ProfileDir  string          `json:"profile_dir"`
	ConnectedAt time.Time       `json:"connected_at"`
}

// SessionFromRecord конвертирует repo.SessionRecord в SessionResponse.
func SessionFromRecord(rec *repo.SessionRecord) SessionResponse {
	return SessionResponse{
		Account:     rec.Account,
		Platform:    rec.Platform,
		ProfileDir:  rec.ProfileDir,
		ConnectedAt: rec.ConnectedAt,
	}
}

// DisconnectRequest — запрос на закрытие сессии.
type DisconnectRequest struct {
	Account  string          `json:"account"`
	Platform domain.Platform `json:"platform"`
}
