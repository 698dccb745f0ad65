package browser

import "errors"

// Ошибки браузерной сессии.
var (
	// ErrSessionInit — браузер не удалось запустить.
	// Фатальна для задачи, не ретраится.
	ErrSessionInit = errors.New("browser session init failed")

	// ErrElementNotFound — элемент не найден на странице.
	ErrElementNotFound = errors.New("element not found")

	// ErrCaptchaImage — CAPTCHA-картинку не удалось извлечь из страницы.
	ErrCaptchaImage = errors.New("captcha image extraction failed")
)
