package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/registry"
)

type fakeRunner struct {
	started chan domain.TaskID
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan domain.TaskID, 1)}
}

func (r *fakeRunner) Run(ctx context.Context, taskID domain.TaskID, params domain.ScrapeParams) {
	r.started <- taskID
}

func newTestHandler(t *testing.T) (*Handler, *registry.Registry, *fakeRunner) {
	t.Helper()
	reg := registry.New(registry.Config{})
	runner := newFakeRunner()
	h := NewHandler(Config{
		Registry:       reg,
		Runner:         runner,
		StreamInterval: 5 * time.Millisecond,
	})
	return h, reg, runner
}

func TestStartScrape(t *testing.T) {
	h, reg, runner := newTestHandler(t)

	body := `{"username":"student","password":"pw","captcha_api_key":"key"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.StartScrape(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ScrapeAccepted
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "started" {
		t.Errorf("expected status started, got %q", resp.Status)
	}

	taskID, err := uuid.Parse(resp.TaskID)
	if err != nil {
		t.Fatalf("task_id is not a valid uuid: %q", resp.TaskID)
	}

	if _, ok := reg.GetStatus(taskID); !ok {
		t.Error("task should be registered")
	}

	select {
	case started := <-runner.started:
		if started != taskID {
			t.Errorf("runner got %s, response has %s", started, taskID)
		}
	case <-time.After(time.Second):
		t.Fatal("runner was not invoked")
	}
}

func TestStartScrape_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"username":`},
		{"missing username", `{"password":"pw","captcha_api_key":"key"}`},
		{"missing password", `{"username":"student","captcha_api_key":"key"}`},
		{"missing api key", `{"username":"student","password":"pw"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, reg, _ := newTestHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.StartScrape(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if reg.Len() != 0 {
				t.Error("rejected request must not register a task")
			}
		})
	}
}

func TestGetTaskStatus(t *testing.T) {
	h, reg, _ := newTestHandler(t)
	router := NewRouter(h)

	taskID := reg.Create()

	// Нетерминальная задача: только статус, без результата
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scrape/status/"+taskID.String(), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TaskStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.StatusPending) {
		t.Errorf("expected pending, got %q", resp.Status)
	}
	if resp.Assignments != nil || resp.Message != "" {
		t.Error("non-terminal task must not expose a result")
	}

	// Терминальная задача отдаёт результат целиком
	reg.SetResult(taskID, &domain.ScrapeResult{
		Assignments: []domain.Record{{ID: "7", Title: "Lab 3"}},
		Quizzes:     []domain.Record{},
		Success:     true,
		Message:     "Scraping completed successfully",
	})
	reg.SetStatus(taskID, domain.StatusCompleted)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scrape/status/"+taskID.String(), nil))

	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.StatusCompleted) {
		t.Errorf("expected completed, got %q", resp.Status)
	}
	if len(resp.Assignments) != 1 || resp.Assignments[0].Title != "Lab 3" {
		t.Errorf("unexpected assignments: %+v", resp.Assignments)
	}
	if resp.Message != "Scraping completed successfully" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestGetTaskStatus_Errors(t *testing.T) {
	h, _, _ := newTestHandler(t)
	router := NewRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scrape/status/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scrape/status/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestStreamTaskLogs(t *testing.T) {
	h, reg, _ := newTestHandler(t)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	taskID := reg.Create()
	reg.SetStatus(taskID, domain.StatusRunning)
	reg.AppendLog(taskID, "INFO", "scrape task started")
	reg.AppendLog(taskID, "INFO", "login attempt 1/3")

	// Завершаем задачу в фоне, пока стрим читает буфер
	go func() {
		time.Sleep(20 * time.Millisecond)
		reg.AppendLog(taskID, "INFO", "scrape task completed successfully")
		reg.SetResult(taskID, &domain.ScrapeResult{
			Assignments: []domain.Record{},
			Quizzes:     []domain.Record{},
			Success:     true,
			Message:     "Scraping completed successfully",
		})
		reg.SetStatus(taskID, domain.StatusCompleted)
	}()

	resp, err := http.Get(srv.URL + "/api/v1/scrape/logs/" + taskID.String())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("unexpected content type %q", got)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}
	stream := string(body)

	for _, want := range []string{
		"event: log",
		"login attempt 1/3",
		"scrape task completed successfully",
		"event: status",
		`"status":"completed"`,
		"event: result",
	} {
		if !strings.Contains(stream, want) {
			t.Errorf("stream missing %q:\n%s", want, stream)
		}
	}
}

func TestStreamTaskLogs_EvictedMidStream(t *testing.T) {
	h, reg, _ := newTestHandler(t)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	taskID := reg.Create()
	reg.SetStatus(taskID, domain.StatusRunning)
	reg.AppendLog(taskID, "INFO", "scrape task started")

	// Задача завершается и тут же выселяется, пока стрим спит между
	// опросами: следующий опрос уже не находит её в реестре
	go func() {
		time.Sleep(20 * time.Millisecond)
		reg.SetResult(taskID, &domain.ScrapeResult{
			Assignments: []domain.Record{},
			Quizzes:     []domain.Record{},
			Success:     true,
		})
		reg.SetStatus(taskID, domain.StatusCompleted)
		reg.Cleanup(time.Now().Add(2 * time.Hour))
	}()

	resp, err := http.Get(srv.URL + "/api/v1/scrape/logs/" + taskID.String())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}
	stream := string(body)

	// Поток обязан закрыться без статус-события с пустым значением
	if strings.Contains(stream, `"status":""`) {
		t.Errorf("stream must not emit an empty status event:\n%s", stream)
	}
	if !strings.Contains(stream, "scrape task started") {
		t.Errorf("buffered logs should still be delivered:\n%s", stream)
	}
}

func TestStreamTaskLogs_UnknownTask(t *testing.T) {
	h, _, _ := newTestHandler(t)
	router := NewRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scrape/logs/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
