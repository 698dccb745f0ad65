package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Vigil/internal/browser"
	"github.com/shaiso/Vigil/internal/captcha"
	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/registry"
	"github.com/shaiso/Vigil/internal/telemetry"
)

// Default configuration values.
const (
	defaultMaxLoginRetries     = 3
	defaultCaptchaSolveRetries = 3
	defaultWaitTimeout         = 20 * time.Second
	defaultPollInterval        = 200 * time.Millisecond
	defaultSettleTimeout       = 10 * time.Second
)

// Сообщение, которое видит пользователь при неуспешной аутентификации.
// Ни credentials, ни ответы сервиса распознавания наружу не попадают.
const loginFailedMessage = "Failed to login to DULMS"

// Notifier отправляет уведомление о дедлайнах после успешного scrape.
type Notifier interface {
	Dispatch(ctx context.Context, webhookURL string, result *domain.ScrapeResult) bool
}

// Scraper выполняет одну scrape-задачу от начала до конца.
//
// Оркестратор одной задачи:
//   - открывает браузерную сессию (и гарантированно закрывает её
//     на любом пути выхода, включая панику)
//   - проходит логин с решением CAPTCHA и ограниченными ретраями
//   - собирает обе listing-страницы
//   - публикует статусы и логи через Registry
//   - делегирует уведомление Notifier'у, если задан webhook
//
// Каждая задача — независимая единица фоновой работы: один Run на один
// task id, повторного входа не бывает.
type Scraper struct {
	registry *registry.Registry
	sessions browser.Factory
	solver   captcha.Solver
	notifier Notifier

	loginURL       string
	assignmentsURL string
	quizzesURL     string
	successURLPart string

	maxLoginRetries     int
	captchaSolveRetries int
	waitTimeout         time.Duration
	pollInterval        time.Duration
	settleTimeout       time.Duration
	headless            bool

	logger *slog.Logger
}

// Config — конфигурация Scraper.
type Config struct {
	// Registry — реестр задач (обязательно).
	Registry *registry.Registry

	// Sessions — фабрика браузерных сессий (обязательно).
	Sessions browser.Factory

	// Solver — сервис распознавания CAPTCHA (обязательно).
	Solver captcha.Solver

	// Notifier — диспетчер уведомлений (опционально).
	Notifier Notifier

	// URLs и маркер успешного логина.
	LoginURL       string
	AssignmentsURL string
	QuizzesURL     string
	SuccessURLPart string

	// Retry/timeout политика логина.
	MaxLoginRetries     int           // default: 3
	CaptchaSolveRetries int           // default: 3
	WaitTimeout         time.Duration // default: 20s
	PollInterval        time.Duration // default: 200ms
	SettleTimeout       time.Duration // default: 10s

	// Headless — запускать браузер без UI.
	Headless bool

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Scraper.
func New(cfg Config) *Scraper {
	maxLoginRetries := cfg.MaxLoginRetries
	if maxLoginRetries <= 0 {
		maxLoginRetries = defaultMaxLoginRetries
	}

	captchaSolveRetries := cfg.CaptchaSolveRetries
	if captchaSolveRetries <= 0 {
		captchaSolveRetries = defaultCaptchaSolveRetries
	}

	waitTimeout := cfg.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = defaultWaitTimeout
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	settleTimeout := cfg.SettleTimeout
	if settleTimeout <= 0 {
		settleTimeout = defaultSettleTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		registry:            cfg.Registry,
		sessions:            cfg.Sessions,
		solver:              cfg.Solver,
		notifier:            cfg.Notifier,
		loginURL:            cfg.LoginURL,
		assignmentsURL:      cfg.AssignmentsURL,
		quizzesURL:          cfg.QuizzesURL,
		successURLPart:      cfg.SuccessURLPart,
		maxLoginRetries:     maxLoginRetries,
		captchaSolveRetries: captchaSolveRetries,
		waitTimeout:         waitTimeout,
		pollInterval:        pollInterval,
		settleTimeout:       settleTimeout,
		headless:            cfg.Headless,
		logger:              logger,
	}
}

// Run выполняет scrape-задачу и доводит её до терминального статуса.
//
// Протокол:
//  1. Открыть браузерную сессию — неудача фатальна, без ретраев.
//  2. Логин (см. login.go).
//  3. Собрать assignments и quizzes (см. listings.go).
//  4. Отправить уведомление, если задан webhook — неудача не фатальна.
//  5. Закрыть сессию на любом пути выхода, включая панику.
//
// У задачи нет общего дедлайна: каждое ожидание внутри ограничено
// по времени, поэтому Run не может зависнуть навсегда.
func (s *Scraper) Run(ctx context.Context, taskID domain.TaskID, params domain.ScrapeParams) {
	started := time.Now()
	log := newTaskLog(s.registry, taskID, s.logger)

	s.registry.SetStatus(taskID, domain.StatusRunning)
	log.Info("scrape task started")

	result := &domain.ScrapeResult{
		Assignments: []domain.Record{},
		Quizzes:     []domain.Record{},
	}

	fail := func(message string) {
		result.Timestamp = time.Now()
		result.Success = false
		result.Message = message
		s.registry.SetResult(taskID, result)
		s.registry.SetStatus(taskID, domain.StatusError)
		telemetry.ScrapeDuration.Observe(time.Since(started).Seconds())
	}

	// Необработанный сбой на любом шаге переводит задачу в error.
	// Deferred закрытие сессии выполняется раньше этого recover,
	// так что браузер освобождается и при панике.
	defer func() {
		if r := recover(); r != nil {
			log.Error("scrape task panicked: %v", r)
			fail(fmt.Sprintf("An error occurred: %v", r))
		}
	}()

	sess, err := s.sessions.Open(ctx, s.headless)
	if err != nil {
		log.Error("failed to open browser session: %v", err)
		fail(fmt.Sprintf("An error occurred: %v", err))
		return
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Error("failed to close browser session: %v", err)
		} else {
			log.Info("browser session closed")
		}
	}()

	if err := s.login(ctx, sess, params, log); err != nil {
		fail(loginFailedMessage)
		return
	}

	result.Assignments = s.scrapeListing(ctx, sess, s.assignmentsListing(), log)
	result.Quizzes = s.scrapeListing(ctx, sess, s.quizzesListing(), log)

	result.Timestamp = time.Now()
	result.Success = true
	result.Message = "Scraping completed successfully"

	// Уведомление — best-effort: исход доставки не меняет исход задачи.
	if params.Webhook != "" && s.notifier != nil {
		s.notifier.Dispatch(ctx, params.Webhook, result)
	}

	s.registry.SetResult(taskID, result)
	s.registry.SetStatus(taskID, domain.StatusCompleted)
	telemetry.ScrapeDuration.Observe(time.Since(started).Seconds())
	log.Info("scrape task completed successfully")
}
