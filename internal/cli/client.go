package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ActivitySettingResponse — настройка активности из API.
type ActivitySettingResponse struct {
	Activity  string `json:"activity"`
	Platform  string `json:"platform"`
	Weight    int    `json:"weight"`
	Enabled   bool   `json:"enabled"`
	UpdatedAt string `json:"updated_at"`
}

// DistributionResponse — распределение активностей из API.
type DistributionResponse struct {
	Activities  []ActivitySettingResponse `json:"activities"`
	TotalWeight int                       `json:"total_weight"`
}

// SlotResponse — слот расписания из API.
type SlotResponse struct {
	ID        string `json:"id"`
	Activity  string `json:"activity"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	Priority  int    `json:"priority"`
}

// ScheduleResponse — расписание дня из API.
type ScheduleResponse struct {
	Date        string         `json:"date"`
	GeneratedAt string         `json:"generated_at"`
	Slots       []SlotResponse `json:"slots"`
}

// JobResponse — задание из API.
type JobResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	Priority    int            `json:"priority"`
	Payload     map[string]any `json:"payload,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   string         `json:"created_at"`
	ClaimedAt   string         `json:"claimed_at,omitempty"`
	ProcessedAt string         `json:"processed_at,omitempty"`
}

// DispatchStateResponse — состояние диспетчеризации из API.
type DispatchStateResponse struct {
	Enabled bool `json:"enabled"`
}

// SessionResponse — сессия из API.
type SessionResponse struct {
	Account     string `json:"account"`
	Platform    string `json:"platform"`
	ProfileDir  string `json:"profile_dir"`
	ConnectedAt string `json:"connected_at"`
}

// ListJobsOpts — параметры фильтрации jobs.
type ListJobsOpts struct {
	Status string
	Limit  int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Presence API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Distribution ---

// GetDistribution возвращает текущее распределение.
func (c *Client) GetDistribution() (*DistributionResponse, error) {
	var dist DistributionResponse
	err := c.get("/api/v1/distribution", &dist)
	return &dist, err
}

// SetWeight изменяет вес активности.
func (c *Client) SetWeight(activity string, weight int) (*DistributionResponse, error) {
	body := map[string]int{"weight": weight}
	var dist DistributionResponse
	err := c.put("/api/v1/distribution/"+activity, body, &dist)
	return &dist, err
}

// SetActivityEnabled включает или выключает активность.
func (c *Client) SetActivityEnabled(activity string, enabled bool) (*DistributionResponse, error) {
	body := map[string]bool{"enabled": enabled}
	var dist DistributionResponse
	err := c.put("/api/v1/distribution/"+activity+"/enabled", body, &dist)
	return &dist, err
}

// --- Schedule ---

// GetSchedule возвращает расписание дня (date пустой — сегодня).
func (c *Client) GetSchedule(date string) (*ScheduleResponse, error) {
	path := "/api/v1/schedule"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}

	var sched ScheduleResponse
	err := c.get(path, &sched)
	return &sched, err
}

// RegenerateSchedule перегенерирует расписание на сегодня.
func (c *Client) RegenerateSchedule(full bool) (*ScheduleResponse, error) {
	body := map[string]bool{"full": full}
	var sched ScheduleResponse
	err := c.post("/api/v1/schedule/regenerate", body, &sched)
	return &sched, err
}

// --- Jobs ---

// ListJobs возвращает список заданий.
func (c *Client) ListJobs(opts ListJobsOpts) ([]JobResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var jobs []JobResponse
	err := c.list("/api/v1/jobs", params, &jobs)
	return jobs, err
}

// GetJob возвращает задание по ID.
func (c *Client) GetJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.get("/api/v1/jobs/"+id, &job)
	return &job, err
}

// --- Dispatch ---

// GetDispatchState возвращает состояние диспетчеризации.
func (c *Client) GetDispatchState() (*DispatchStateResponse, error) {
	var state DispatchStateResponse
	err := c.get("/api/v1/dispatch", &state)
	return &state, err
}

// PauseDispatch ставит диспетчеризацию на паузу.
func (c *Client) PauseDispatch() (*DispatchStateResponse, error) {
	var state DispatchStateResponse
	err := c.post("/api/v1/dispatch/pause", nil, &state)
	return &state, err
}

// ResumeDispatch возобновляет диспетчеризацию.
func (c *Client) ResumeDispatch() (*DispatchStateResponse, error) {
	var state DispatchStateResponse
	err := c.post("/api/v1/dispatch/resume", nil, &state)
	return &state, err
}

// TriggerTick запрашивает внеплановый тик диспетчера.
func (c *Client) TriggerTick() error {
	return c.post("/api/v1/dispatch/tick", nil, nil)
}

// --- Sessions ---

// ListSessions возвращает зарегистрированные сессии.
func (c *Client) ListSessions() ([]SessionResponse, error) {
	var sessions []SessionResponse
	err := c.list("/api/v1/sessions", nil, &sessions)
	return sessions, err
}

// DisconnectSession рассылает команду закрыть сессию.
func (c *Client) DisconnectSession(account, platform string) error {
	body := map[string]string{"account": account, "platform": platform}
	return c.post("/api/v1/sessions/disconnect", body, nil)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent || result == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(dr.Data, result)
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
