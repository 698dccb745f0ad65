package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus — статус выполнения scrape-задачи.
//
// Жизненный цикл:
//
//	pending → running → completed
//	                  ↘ error
//
// Строковые значения в нижнем регистре — это формат, который видят
// клиенты API (frontend опрашивает статус по этим значениям).
type TaskStatus string

const (
	// StatusPending — задача создана, но ещё не начала выполняться.
	StatusPending TaskStatus = "pending"

	// StatusRunning — задача в процессе выполнения.
	StatusRunning TaskStatus = "running"

	// StatusCompleted — задача успешно завершена, результат доступен.
	StatusCompleted TaskStatus = "completed"

	// StatusError — задача завершилась с ошибкой.
	StatusError TaskStatus = "error"
)

// IsTerminal возвращает true, если статус финальный (задача завершена).
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError:
		return true
	default:
		return false
	}
}

// TaskID — идентификатор scrape-задачи.
//
// Генерируется один раз при создании и никогда не переиспользуется.
type TaskID = uuid.UUID

// NewTaskID генерирует новый уникальный идентификатор задачи.
func NewTaskID() TaskID {
	return uuid.New()
}

// ScrapeParams — параметры одной scrape-задачи.
//
// Webhook опционален: пустая строка означает, что уведомления
// отправлять не нужно.
type ScrapeParams struct {
	// Username — имя пользователя DULMS.
	Username string

	// Password — пароль DULMS.
	Password string

	// CaptchaAPIKey — ключ сервиса распознавания CAPTCHA.
	CaptchaAPIKey string

	// Webhook — URL webhook'а для уведомлений о дедлайнах.
	Webhook string
}

// LogEntry — одна запись в лог-буфере задачи.
type LogEntry struct {
	// Timestamp — время записи.
	Timestamp time.Time `json:"timestamp"`

	// Level — уровень: INFO, WARN, ERROR.
	Level string `json:"level"`

	// Message — текст сообщения.
	Message string `json:"message"`
}
