package captcha

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Solver распознаёт CAPTCHA-картинку.
type Solver interface {
	// Solve отправляет картинку сервису распознавания и возвращает текст.
	// Ошибка оборачивает ErrSolve; ретраи — ответственность вызывающего.
	Solve(ctx context.Context, image []byte, apiKey string) (string, error)
}

// HTTPSolver — клиент внешнего сервиса распознавания CAPTCHA.
//
// Протокол сервиса: POST JSON с base64-картинкой, ответ содержит
// solution.text. Ключ передаётся вызывающим per-task — сервис
// не хранит ключи.
type HTTPSolver struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// Config — конфигурация HTTPSolver.
type Config struct {
	// Endpoint — URL сервиса распознавания (обязательно).
	Endpoint string

	// Timeout — таймаут одного запроса (default: 30s).
	Timeout time.Duration

	// Logger
	Logger *slog.Logger
}

// NewHTTPSolver создаёт новый HTTPSolver.
func NewHTTPSolver(cfg Config) *HTTPSolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPSolver{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// solveRequest — тело запроса к сервису распознавания.
type solveRequest struct {
	Key    string `json:"key"`
	Method string `json:"method"`
	Body   string `json:"body"`
	JSON   int    `json:"json"`
}

// solveResponse — ответ сервиса распознавания.
type solveResponse struct {
	Solution struct {
		Text string `json:"text"`
	} `json:"solution"`
}

// Solve отправляет картинку сервису и возвращает распознанный текст.
func (s *HTTPSolver) Solve(ctx context.Context, image []byte, apiKey string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrSolve)
	}

	payload, err := json.Marshal(solveRequest{
		Key:    apiKey,
		Method: "base64",
		Body:   base64.StdEncoding.EncodeToString(image),
		JSON:   1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrSolve, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrSolve, err)
	}
	req.Header.Set("Content-Type", "application/json")

	s.logger.Debug("submitting captcha to solving service", "endpoint", s.endpoint)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSolve, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrSolve, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: HTTP %d", ErrSolve, resp.StatusCode)
	}

	var parsed solveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSolve, err)
	}

	if parsed.Solution.Text == "" {
		return "", fmt.Errorf("%w: unexpected response format", ErrSolve)
	}

	return parsed.Solution.Text, nil
}
