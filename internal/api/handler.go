package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/registry"
)

// defaultStreamInterval — период опроса лог-буфера в SSE-стриме.
const defaultStreamInterval = time.Second

// Runner выполняет scrape-задачу. Реализуется scraper.Scraper.
type Runner interface {
	Run(ctx context.Context, taskID domain.TaskID, params domain.ScrapeParams)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	registry       *registry.Registry
	runner         Runner
	logger         *slog.Logger
	streamInterval time.Duration
}

// Config — конфигурация для создания Handler.
type Config struct {
	Registry *registry.Registry
	Runner   Runner
	Logger   *slog.Logger

	// StreamInterval — период опроса логов в SSE (default: 1s).
	StreamInterval time.Duration
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	interval := cfg.StreamInterval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		registry:       cfg.Registry,
		runner:         cfg.Runner,
		logger:         logger,
		streamInterval: interval,
	}
}

// StartScrape принимает запрос и запускает задачу в фоне.
// POST /api/v1/scrape
func (h *Handler) StartScrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	taskID := h.registry.Create()

	// Жизнь задачи не привязана к HTTP-запросу: клиент может
	// отключиться сразу после ответа, задача продолжит выполняться.
	go h.runner.Run(context.Background(), taskID, req.Params())

	h.logger.Info("scrape task accepted", "task_id", taskID)

	JSON(w, http.StatusOK, ScrapeAccepted{
		TaskID: taskID.String(),
		Status: "started",
	})
}

// GetTaskStatus возвращает состояние задачи.
// GET /api/v1/scrape/status/{taskID}
func (h *Handler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		BadRequest(w, "invalid task id")
		return
	}

	status, ok := h.registry.GetStatus(taskID)
	if !ok {
		NotFound(w, "task not found")
		return
	}

	resp := TaskStatusResponse{
		TaskID: taskID.String(),
		Status: string(status),
	}

	if result, ok := h.registry.GetResult(taskID); ok {
		resp.Message = result.Message
		resp.Assignments = result.Assignments
		resp.Quizzes = result.Quizzes
	}

	JSON(w, http.StatusOK, resp)
}
