package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/registry"
	"github.com/shaiso/Vigil/internal/telemetry"
)

// taskLog дублирует сообщения в два назначения: лог-буфер задачи
// (его выгребает клиент через SSE) и общий структурный лог процесса.
type taskLog struct {
	reg    *registry.Registry
	id     domain.TaskID
	logger *slog.Logger
}

func newTaskLog(reg *registry.Registry, id domain.TaskID, logger *slog.Logger) *taskLog {
	return &taskLog{
		reg:    reg,
		id:     id,
		logger: telemetry.WithTaskID(logger, id.String()),
	}
}

func (l *taskLog) Info(format string, args ...any) {
	l.emit(slog.LevelInfo, "INFO", format, args...)
}

func (l *taskLog) Warn(format string, args ...any) {
	l.emit(slog.LevelWarn, "WARN", format, args...)
}

func (l *taskLog) Error(format string, args ...any) {
	l.emit(slog.LevelError, "ERROR", format, args...)
}

func (l *taskLog) emit(level slog.Level, name, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Log(context.Background(), level, msg)
	l.reg.AppendLog(l.id, name, msg)
}
