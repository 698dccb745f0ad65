package captcha

import "errors"

// Ошибки распознавания CAPTCHA.
var (
	// ErrSolve — сервис распознавания не вернул решение.
	// Ретраится внутренним циклом логина, затем поднимается
	// до ошибки аутентификации.
	ErrSolve = errors.New("captcha solve failed")
)
