package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// RecordResponse — одна запись listing-страницы из API.
type RecordResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Course        string `json:"course"`
	Deadline      string `json:"deadline"`
	DaysRemaining *int   `json:"days_remaining"`
	Status        string `json:"status"`
	URL           string `json:"url"`
}

// ScrapeAcceptedResponse — ответ на запуск задачи.
type ScrapeAcceptedResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatusResponse — состояние задачи из API.
type TaskStatusResponse struct {
	TaskID      string           `json:"task_id"`
	Status      string           `json:"status"`
	Message     string           `json:"message,omitempty"`
	Assignments []RecordResponse `json:"assignments,omitempty"`
	Quizzes     []RecordResponse `json:"quizzes,omitempty"`
}

// LogEventResponse — запись лога из SSE-стрима.
type LogEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// --- Request types ---

// StartScrapeRequest — запуск scrape-задачи.
type StartScrapeRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	CaptchaAPIKey  string `json:"captcha_api_key"`
	DiscordWebhook string `json:"discord_webhook,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamEvent — одно событие SSE-стрима логов.
type StreamEvent struct {
	Name string // log | status | result
	Data json.RawMessage
}

// --- Client ---

// Client — HTTP-клиент для Vigil API.
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

// StartScrape запускает scrape-задачу.
func (c *Client) StartScrape(req StartScrapeRequest) (*ScrapeAcceptedResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/v1/scrape", "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	var accepted ScrapeAcceptedResponse
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &accepted, nil
}

// GetTaskStatus возвращает состояние задачи.
func (c *Client) GetTaskStatus(taskID string) (*TaskStatusResponse, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/api/v1/scrape/status/" + taskID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	var status TaskStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// StreamTaskLogs подключается к SSE-стриму задачи и вызывает handler
// на каждое событие. Возвращается, когда сервер закрывает стрим
// (терминальный статус задачи) или handler вернул ошибку.
func (c *Client) StreamTaskLogs(taskID string, handler func(StreamEvent) error) error {
	// Стрим живёт до конца задачи, общий таймаут клиента не подходит
	streamClient := &http.Client{}

	resp, err := streamClient.Get(c.baseURL + "/api/v1/scrape/logs/" + taskID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	return readEvents(resp.Body, handler)
}

// maxEventSize — предел одной строки SSE-потока. Событие result несёт
// весь результат scrape целиком и не влезает в дефолтные 64KB Scanner'а.
const maxEventSize = 4 << 20

// readEvents разбирает SSE-поток: пары строк "event:" и "data:",
// события разделяются пустой строкой.
func readEvents(r io.Reader, handler func(StreamEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	var event StreamEvent

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event:"):
			event.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			event.Data = json.RawMessage(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case line == "":
			if event.Name != "" && len(event.Data) > 0 {
				if err := handler(event); err != nil {
					return err
				}
			}
			event = StreamEvent{}
		}
	}

	return scanner.Err()
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
