package scraper

import "errors"

// Ошибки оркестратора.
var (
	// ErrLoginFailed — аутентификация не удалась после всех попыток.
	ErrLoginFailed = errors.New("failed to login after all attempts")
)
