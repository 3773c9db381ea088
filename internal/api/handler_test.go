package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/repo"
)

func newTestServer(t *testing.T) (*httptest.Server, *repo.MemoryScheduleStore, *repo.MemoryJobStore) {
	t.Helper()

	schedules := repo.NewMemoryScheduleStore()
	jobs := repo.NewMemoryJobStore()

	handler := NewHandler(Config{
		Settings:  repo.NewMemorySettingsStore(),
		Schedules: schedules,
		Jobs:      jobs,
		Sessions:  repo.NewMemorySessionStore(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, schedules, jobs
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var parsed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}

	return resp.StatusCode, parsed
}

func distributionTotal(t *testing.T, body map[string]any) float64 {
	t.Helper()

	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data in response: %v", body)
	}
	total, ok := data["total_weight"].(float64)
	if !ok {
		t.Fatalf("no total_weight in response: %v", data)
	}
	return total
}

func TestGetDistributionDefaults(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/distribution", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if total := distributionTotal(t, body); total != 100 {
		t.Errorf("total_weight = %v, want 100", total)
	}
}

func TestSetWeightRebalances(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodPut, srv.URL+"/api/v1/distribution/tweet", `{"weight": 70}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", status, body)
	}
	if total := distributionTotal(t, body); total != 100 {
		t.Errorf("total_weight after rebalance = %v, want 100", total)
	}

	data := body["data"].(map[string]any)
	for _, raw := range data["activities"].([]any) {
		activity := raw.(map[string]any)
		if activity["activity"] == "tweet" && activity["weight"].(float64) != 70 {
			t.Errorf("tweet weight = %v, want 70", activity["weight"])
		}
	}
}

func TestSetWeightValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/distribution/bogus", `{"weight": 50}`)
	if status != http.StatusBadRequest {
		t.Errorf("unknown activity: status = %d, want 400", status)
	}

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/distribution/tweet", `{}`)
	if status != http.StatusBadRequest {
		t.Errorf("missing weight: status = %d, want 400", status)
	}
}

func TestToggleActivity(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodPut, srv.URL+"/api/v1/distribution/tweet/enabled", `{"enabled": false}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200: %v", status, body)
	}

	data := body["data"].(map[string]any)
	for _, raw := range data["activities"].([]any) {
		activity := raw.(map[string]any)
		if activity["activity"] == "tweet" && activity["enabled"].(bool) {
			t.Error("tweet still enabled after toggle")
		}
	}
}

func TestScheduleLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t)

	// No schedule yet.
	status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/schedule", "")
	if status != http.StatusNotFound {
		t.Fatalf("get before regenerate: status = %d, want 404", status)
	}

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/schedule/regenerate", `{"full": true}`)
	if status != http.StatusOK {
		t.Fatalf("regenerate: status = %d, want 200: %v", status, body)
	}

	data := body["data"].(map[string]any)
	slots := data["slots"].([]any)
	if len(slots) != domain.SlotsPerDay {
		t.Errorf("regenerated %d slots, want %d", len(slots), domain.SlotsPerDay)
	}

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/schedule", "")
	if status != http.StatusOK {
		t.Errorf("get after regenerate: status = %d, want 200", status)
	}

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/schedule?date=bogus", "")
	if status != http.StatusBadRequest {
		t.Errorf("invalid date: status = %d, want 400", status)
	}
}

func TestJobEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/jobs", "")
	if status != http.StatusOK {
		t.Fatalf("list jobs: status = %d, want 200: %v", status, body)
	}

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/jobs?status=bogus", "")
	if status != http.StatusBadRequest {
		t.Errorf("invalid status filter: status = %d, want 400", status)
	}

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/jobs/not-a-uuid", "")
	if status != http.StatusBadRequest {
		t.Errorf("invalid job id: status = %d, want 400", status)
	}

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/jobs/00000000-0000-0000-0000-000000000001", "")
	if status != http.StatusNotFound {
		t.Errorf("missing job: status = %d, want 404", status)
	}
}

func TestDispatchPauseResume(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/dispatch", "")
	if status != http.StatusOK {
		t.Fatalf("get state: status = %d", status)
	}
	if enabled := body["data"].(map[string]any)["enabled"].(bool); !enabled {
		t.Error("dispatch should be enabled by default")
	}

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/dispatch/pause", "")
	if status != http.StatusOK {
		t.Fatalf("pause: status = %d", status)
	}
	if enabled := body["data"].(map[string]any)["enabled"].(bool); enabled {
		t.Error("dispatch still enabled after pause")
	}

	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/dispatch/resume", "")
	if status != http.StatusOK {
		t.Fatalf("resume: status = %d", status)
	}
	if enabled := body["data"].(map[string]any)["enabled"].(bool); !enabled {
		t.Error("dispatch not enabled after resume")
	}
}

func TestTickRequiresMQ(t *testing.T) {
	srv, _, _ := newTestServer(t)

	// The test server has no publisher wired.
	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/dispatch/tick", "")
	if status != http.StatusServiceUnavailable {
		t.Errorf("tick without mq: status = %d, want 503", status)
	}
}

func TestDisconnectValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions/disconnect", `{"platform": "twitter"}`)
	if status != http.StatusBadRequest {
		t.Errorf("missing account: status = %d, want 400", status)
	}

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions/disconnect", `{"account": "alice", "platform": "myspace"}`)
	if status != http.StatusBadRequest {
		t.Errorf("invalid platform: status = %d, want 400", status)
	}
}
