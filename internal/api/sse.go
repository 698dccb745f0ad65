package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shaiso/Vigil/internal/domain"
)

// StreamTaskLogs стримит лог задачи через Server-Sent Events.
// GET /api/v1/scrape/logs/{taskID}
//
// Поток держится открытым до терминального статуса задачи: каждые
// streamInterval выгребается лог-буфер, в конце отправляются события
// status и result. Каждая запись лога доставляется не более одного
// раза, поэтому второй подписчик увидит только новые записи.
func (h *Handler) StreamTaskLogs(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		BadRequest(w, "invalid task id")
		return
	}

	if _, ok := h.registry.GetStatus(taskID); !ok {
		NotFound(w, "task not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, h.logger, fmt.Errorf("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		h.flushLogs(w, taskID)

		status, ok := h.registry.GetStatus(taskID)
		if !ok {
			// Задачу вычистил janitor во время стрима: финальных
			// событий уже не будет, просто закрываем поток.
			h.logger.Warn("task evicted during log stream", "task_id", taskID)
			flusher.Flush()
			return
		}

		if status.IsTerminal() {
			// Добрать записи, появившиеся после последнего дренажа
			h.flushLogs(w, taskID)
			h.writeFinal(w, taskID, status)
			flusher.Flush()
			return
		}

		flusher.Flush()

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) flushLogs(w http.ResponseWriter, taskID domain.TaskID) {
	for _, entry := range h.registry.DrainLogs(taskID) {
		writeEvent(w, "log", entry)
	}
}

func (h *Handler) writeFinal(w http.ResponseWriter, taskID domain.TaskID, status domain.TaskStatus) {
	writeEvent(w, "status", map[string]string{
		"task_id": taskID.String(),
		"status":  string(status),
	})

	if result, ok := h.registry.GetResult(taskID); ok {
		writeEvent(w, "result", result)
	}
}

func writeEvent(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
