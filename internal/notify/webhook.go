package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const webhookTimeout = 15 * time.Second

// WebhookClient доставляет JSON payload на webhook URL.
//
// Доставка best-effort: транспортные ошибки и не-2xx ответы
// логируются и превращаются в false, наружу ничего не летит.
type WebhookClient struct {
	client *http.Client
	logger *slog.Logger
}

// NewWebhookClient создаёт новый WebhookClient.
func NewWebhookClient(logger *slog.Logger) *WebhookClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookClient{
		client: &http.Client{Timeout: webhookTimeout},
		logger: logger,
	}
}

// Post отправляет payload одним HTTP POST.
func (c *WebhookClient) Post(ctx context.Context, url string, payload any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to marshal webhook payload", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to build webhook request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("webhook request failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("webhook rejected notification", "status", resp.StatusCode)
		return false
	}

	c.logger.Debug("webhook delivered", "status", resp.StatusCode)
	return true
}
