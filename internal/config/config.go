package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Значения по умолчанию для DULMS.
const (
	defaultLoginURL       = "https://dulms.deltauniv.edu.eg/Login.aspx"
	defaultQuizzesURL     = "https://dulms.deltauniv.edu.eg/Quizzes/StudentQuizzes"
	defaultAssignmentsURL = "https://dulms.deltauniv.edu.eg/Assignment/AssignmentStudentList"
	defaultSuccessURLPart = "Profile/StudentProfile"
	defaultCaptchaAPIURL  = "https://api.anti-captcha.com/createTask"
)

// Config — конфигурация Vigil, загружаемая из окружения.
//
// Создаётся один раз в main и передаётся компонентам явно (DI),
// никакого глобального состояния.
type Config struct {
	// --- DULMS URLs ---

	// LoginURL — страница логина.
	LoginURL string

	// AssignmentsURL — listing-страница заданий.
	AssignmentsURL string

	// QuizzesURL — listing-страница квизов.
	QuizzesURL string

	// SuccessURLPart — подстрока URL, означающая успешный логин.
	SuccessURLPart string

	// --- Scraper ---

	// DeadlineThresholdDays — порог "скорого" дедлайна в днях.
	DeadlineThresholdDays int

	// MaxLoginRetries — максимум внешних попыток логина.
	MaxLoginRetries int

	// CaptchaSolveRetries — максимум попыток решения CAPTCHA на один логин.
	CaptchaSolveRetries int

	// WaitTimeout — таймаут ожидания видимости элемента.
	WaitTimeout time.Duration

	// PollInterval — интервал опроса при ожиданиях.
	PollInterval time.Duration

	// LoginSettleTimeout — сколько ждать редиректа после отправки формы логина.
	LoginSettleTimeout time.Duration

	// Headless — запускать браузер без UI.
	Headless bool

	// CaptchaAPIURL — endpoint сервиса распознавания CAPTCHA.
	CaptchaAPIURL string

	// --- Registry ---

	// TaskTTL — сколько хранить завершённую задачу до вычистки.
	TaskTTL time.Duration

	// CleanupInterval — период работы janitor'а.
	CleanupInterval time.Duration

	// --- API ---

	// APIPort — порт HTTP API.
	APIPort string

	// --- Scheduler ---

	// ScrapeCron — cron-выражение периодического scrape (пусто = выключено).
	ScrapeCron string

	// ScheduleUsername, SchedulePassword, ScheduleCaptchaKey, ScheduleWebhook —
	// параметры задач, создаваемых по расписанию.
	ScheduleUsername   string
	SchedulePassword   string
	ScheduleCaptchaKey string
	ScheduleWebhook    string
}

// Load читает конфигурацию из окружения.
//
// Сначала подхватывает .env файл, если он есть (как в локальной разработке),
// затем читает переменные с fallback на значения по умолчанию.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		LoginURL:       getString("LOGIN_URL", defaultLoginURL),
		AssignmentsURL: getString("ASSIGNMENTS_URL", defaultAssignmentsURL),
		QuizzesURL:     getString("QUIZZES_URL", defaultQuizzesURL),
		SuccessURLPart: getString("LOGIN_SUCCESS_URL_PART", defaultSuccessURLPart),

		DeadlineThresholdDays: getInt("DEADLINE_THRESHOLD_DAYS", 3),
		MaxLoginRetries:       getInt("MAX_LOGIN_RETRIES", 3),
		CaptchaSolveRetries:   getInt("CAPTCHA_SOLVE_RETRIES", 3),
		WaitTimeout:           getDuration("DEFAULT_TIMEOUT", 20*time.Second),
		PollInterval:          getDuration("POLL_FREQUENCY", 200*time.Millisecond),
		LoginSettleTimeout:    getDuration("LOGIN_SETTLE_TIMEOUT", 10*time.Second),
		Headless:              getBool("HEADLESS_MODE", true),
		CaptchaAPIURL:         getString("CAPTCHA_API_URL", defaultCaptchaAPIURL),

		TaskTTL:         getDuration("TASK_TTL", time.Hour),
		CleanupInterval: getDuration("CLEANUP_INTERVAL", 5*time.Minute),

		APIPort: getString("API_PORT", "8000"),

		ScrapeCron:         getString("SCRAPE_CRON", ""),
		ScheduleUsername:   getString("SCHEDULE_USERNAME", ""),
		SchedulePassword:   getString("SCHEDULE_PASSWORD", ""),
		ScheduleCaptchaKey: getString("SCHEDULE_CAPTCHA_API_KEY", ""),
		ScheduleWebhook:    getString("SCHEDULE_DISCORD_WEBHOOK", ""),
	}
}

// getString читает строковую переменную окружения с default значением.
func getString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getInt читает целочисленную переменную окружения с default значением.
func getInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

// getBool читает булеву переменную окружения с default значением.
func getBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// getDuration читает duration из окружения.
// Принимает как Go-формат ("20s", "5m"), так и число секунд ("20").
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if sec, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(sec * float64(time.Second))
	}
	return defaultVal
}
