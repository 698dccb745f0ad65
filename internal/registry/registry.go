package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/telemetry"
)

// Default configuration values.
const (
	defaultTaskTTL         = time.Hour
	defaultCleanupInterval = 5 * time.Minute
)

// entry — состояние одной задачи.
//
// Собственный мьютекс на каждую запись: пишет в неё только один
// оркестратор, но статус/логи конкурентно читают pollers.
type entry struct {
	mu         sync.Mutex
	status     domain.TaskStatus
	result     *domain.ScrapeResult
	logs       []domain.LogEntry
	finishedAt time.Time
}

// Registry — реестр scrape-задач на время жизни процесса.
//
// Единственная точка разделяемого состояния в системе:
//   - оркестратор пишет статус/результат/логи своей задачи
//   - HTTP pollers конкурентно читают статус и выгребают логи
//
// Две разные задачи никогда не конфликтуют: id не переиспользуются
// и каждый id диспатчится ровно один раз. Синхронизация нужна только
// внутренней структуре (map + per-entry мьютексы).
//
// Завершённые задачи вычищаются janitor'ом по TTL — без этого
// реестр рос бы до рестарта процесса.
type Registry struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]*entry

	ttl             time.Duration
	cleanupInterval time.Duration

	// Lifecycle janitor'а
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Registry.
type Config struct {
	// TaskTTL — сколько хранить задачу после терминального статуса (default: 1h).
	TaskTTL time.Duration

	// CleanupInterval — период janitor'а (default: 5m).
	CleanupInterval time.Duration

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Registry.
func New(cfg Config) *Registry {
	ttl := cfg.TaskTTL
	if ttl <= 0 {
		ttl = defaultTaskTTL
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		tasks:           make(map[domain.TaskID]*entry),
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

// Create регистрирует новую задачу в статусе pending и возвращает её id.
// Никогда не завершается с ошибкой.
func (r *Registry) Create() domain.TaskID {
	id := domain.NewTaskID()

	r.mu.Lock()
	r.tasks[id] = &entry{status: domain.StatusPending}
	r.mu.Unlock()

	telemetry.TasksCreated.Inc()
	r.logger.Info("task created", "task_id", id)

	return id
}

// SetStatus устанавливает статус задачи.
//
// Неизвестный id — ошибка программирования, а не пользователя:
// логируется и молча игнорируется. Терминальные статусы "липкие" —
// попытка перевести завершённую задачу куда-либо ещё отбрасывается.
func (r *Registry) SetStatus(id domain.TaskID, status domain.TaskStatus) {
	e := r.get(id)
	if e == nil {
		r.logger.Warn("set status for unknown task", "task_id", id, "status", status)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status.IsTerminal() {
		r.logger.Warn("ignoring status transition from terminal state",
			"task_id", id,
			"from", e.status,
			"to", status,
		)
		return
	}

	e.status = status

	if status.IsTerminal() {
		e.finishedAt = time.Now()
		telemetry.TasksFinished.WithLabelValues(string(status)).Inc()
	}
}

// SetResult сохраняет результат задачи.
//
// Вызывается ровно один раз на задачу, до или вместе с переходом
// в терминальный статус.
func (r *Registry) SetResult(id domain.TaskID, result *domain.ScrapeResult) {
	e := r.get(id)
	if e == nil {
		r.logger.Warn("set result for unknown task", "task_id", id)
		return
	}

	e.mu.Lock()
	e.result = result
	e.mu.Unlock()
}

// GetStatus возвращает текущий статус задачи.
// ok == false означает неизвестный id (caller отвечает 404).
func (r *Registry) GetStatus(id domain.TaskID) (domain.TaskStatus, bool) {
	e := r.get(id)
	if e == nil {
		return "", false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, true
}

// GetResult возвращает результат задачи.
//
// Определён только после перехода в терминальный статус:
// до этого возвращает (nil, false) даже если результат уже записан.
func (r *Registry) GetResult(id domain.TaskID) (*domain.ScrapeResult, bool) {
	e := r.get(id)
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.status.IsTerminal() || e.result == nil {
		return nil, false
	}
	return e.result, true
}

// AppendLog добавляет запись в лог-буфер задачи.
// Порядок записей одного продюсера сохраняется.
func (r *Registry) AppendLog(id domain.TaskID, level, message string) {
	e := r.get(id)
	if e == nil {
		r.logger.Warn("append log for unknown task", "task_id", id)
		return
	}

	e.mu.Lock()
	e.logs = append(e.logs, domain.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	e.mu.Unlock()
}

// DrainLogs возвращает и удаляет все накопленные записи лога.
//
// Снимок, не блокирует: каждая запись доставляется не более одного
// раза, порядок сохраняется. Пустой срез — ничего нового нет.
func (r *Registry) DrainLogs(id domain.TaskID) []domain.LogEntry {
	e := r.get(id)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	logs := e.logs
	e.logs = nil
	return logs
}

// Len возвращает количество задач в реестре.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// get возвращает entry задачи или nil.
func (r *Registry) get(id domain.TaskID) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks[id]
}

// Start запускает janitor — фоновую вычистку завершённых задач по TTL.
func (r *Registry) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.cleanupLoop(ctx)
	}()

	r.logger.Info("registry janitor started", "ttl", r.ttl, "interval", r.cleanupInterval)
}

// Stop останавливает janitor.
func (r *Registry) Stop() {
	if r.cancelFunc != nil {
		r.cancelFunc()
	}
	r.wg.Wait()
}

// cleanupLoop — цикл janitor'а.
func (r *Registry) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := r.Cleanup(time.Now()); evicted > 0 {
				r.logger.Info("evicted expired tasks", "count", evicted)
			}
		}
	}
}

// Cleanup удаляет задачи, завершившиеся раньше чем now-TTL.
// Незавершённые задачи не трогает. Возвращает количество удалённых.
func (r *Registry) Cleanup(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.tasks {
		e.mu.Lock()
		expired := e.status.IsTerminal() && e.finishedAt.Before(cutoff)
		e.mu.Unlock()

		if expired {
			delete(r.tasks, id)
			evicted++
		}
	}
	return evicted
}
