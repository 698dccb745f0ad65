package api

import (
	"errors"

	"github.com/shaiso/Vigil/internal/domain"
)

// ScrapeRequest — тело запроса на запуск scrape-задачи.
type ScrapeRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	CaptchaAPIKey  string `json:"captcha_api_key"`
	DiscordWebhook string `json:"discord_webhook,omitempty"`
}

// Validate проверяет обязательные поля запроса.
func (r ScrapeRequest) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if r.CaptchaAPIKey == "" {
		return errors.New("captcha_api_key is required")
	}
	return nil
}

// Params преобразует запрос в параметры задачи.
func (r ScrapeRequest) Params() domain.ScrapeParams {
	return domain.ScrapeParams{
		Username:      r.Username,
		Password:      r.Password,
		CaptchaAPIKey: r.CaptchaAPIKey,
		Webhook:       r.DiscordWebhook,
	}
}

// ScrapeAccepted — ответ на принятый запрос.
type ScrapeAccepted struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatusResponse — текущее состояние задачи.
// Поля результата заполняются только в терминальном статусе.
type TaskStatusResponse struct {
	TaskID      string          `json:"task_id"`
	Status      string          `json:"status"`
	Message     string          `json:"message,omitempty"`
	Assignments []domain.Record `json:"assignments,omitempty"`
	Quizzes     []domain.Record `json:"quizzes,omitempty"`
}
