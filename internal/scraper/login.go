package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Vigil/internal/browser"
	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/telemetry"
)

// Селекторы страницы логина DULMS.
const (
	selUsername     = "#username"
	selPassword     = "#password"
	selCaptchaImage = "#imgCaptcha"
	selCaptchaInput = "#txtCaptcha"
	selLoginButton  = "#btnLogin"
	selLoginError   = "#lblMessage"
)

// login проходит аутентификацию: до maxLoginRetries внешних попыток,
// внутри каждой — до captchaSolveRetries попыток решения CAPTCHA.
// Исчерпание всех попыток — окончательная ошибка аутентификации.
func (s *Scraper) login(ctx context.Context, sess browser.Session, params domain.ScrapeParams, log *taskLog) error {
	log.Info("attempting to log in as %s", params.Username)

	for attempt := 1; attempt <= s.maxLoginRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLoginFailed, err)
		}

		log.Info("login attempt %d/%d", attempt, s.maxLoginRetries)

		if s.loginAttempt(ctx, sess, params, log) {
			log.Info("login successful")
			return nil
		}
	}

	log.Error("failed to login after %d attempts", s.maxLoginRetries)
	return ErrLoginFailed
}

// loginAttempt — одна внешняя попытка: открыть форму, заполнить
// credentials и прокрутить внутренний CAPTCHA-цикл.
func (s *Scraper) loginAttempt(ctx context.Context, sess browser.Session, params domain.ScrapeParams, log *taskLog) bool {
	if err := sess.Navigate(ctx, s.loginURL); err != nil {
		log.Warn("failed to open login page: %v", err)
		return false
	}

	if err := sess.WaitVisible(ctx, selUsername, s.waitTimeout); err != nil {
		log.Warn("login form did not render: %v", err)
		return false
	}

	if err := sess.SendKeys(ctx, selUsername, params.Username); err != nil {
		log.Warn("failed to fill username: %v", err)
		return false
	}
	if err := sess.SendKeys(ctx, selPassword, params.Password); err != nil {
		log.Warn("failed to fill password: %v", err)
		return false
	}

	for attempt := 1; attempt <= s.captchaSolveRetries; attempt++ {
		log.Info("captcha solving attempt %d/%d", attempt, s.captchaSolveRetries)

		solution, err := s.solveCaptcha(ctx, sess, params.CaptchaAPIKey)
		if err != nil {
			telemetry.CaptchaSolveAttempts.WithLabelValues("failed").Inc()
			log.Warn("captcha attempt failed: %v", err)
			continue
		}
		telemetry.CaptchaSolveAttempts.WithLabelValues("ok").Inc()

		if err := sess.SendKeys(ctx, selCaptchaInput, solution); err != nil {
			log.Warn("failed to fill captcha field: %v", err)
			continue
		}
		if err := sess.Click(ctx, selLoginButton); err != nil {
			log.Warn("failed to submit login form: %v", err)
			continue
		}

		if s.waitForLoginRedirect(ctx, sess) {
			return true
		}

		// Сообщение об ошибке на странице: упоминание CAPTCHA или
		// отсутствие сообщения — повод решить её заново, всё остальное
		// заканчивает эту попытку логина.
		msg, err := sess.Text(ctx, selLoginError)
		if err != nil {
			log.Warn("login not confirmed, no error message on page")
			continue
		}
		if strings.Contains(strings.ToUpper(msg), "CAPTCHA") {
			log.Warn("site rejected captcha: %s", msg)
			continue
		}

		log.Warn("login rejected: %s", msg)
		return false
	}

	return false
}

// solveCaptcha извлекает CAPTCHA-картинку из data URL на странице
// и отправляет её сервису распознавания.
func (s *Scraper) solveCaptcha(ctx context.Context, sess browser.Session, apiKey string) (string, error) {
	src, ok, err := sess.Attribute(ctx, selCaptchaImage, "src")
	if err != nil {
		return "", fmt.Errorf("%w: %v", browser.ErrCaptchaImage, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: image has no src attribute", browser.ErrCaptchaImage)
	}

	image, err := browser.ParseImageDataURL(src)
	if err != nil {
		return "", err
	}

	return s.solver.Solve(ctx, image, apiKey)
}

// waitForLoginRedirect опрашивает текущий URL до появления маркера
// успешного логина. Ограниченный по времени poll вместо фиксированного
// sleep: редирект может прийти и раньше, и позже.
func (s *Scraper) waitForLoginRedirect(ctx context.Context, sess browser.Session) bool {
	deadline := time.NewTimer(s.settleTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		loc, err := sess.Location(ctx)
		if err == nil && strings.Contains(loc, s.successURLPart) {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}
