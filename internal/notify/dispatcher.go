package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/telemetry"
)

const defaultThresholdDays = 3

// Цвета карточек (Discord embed colors).
const (
	colorUrgent  = 0xFF0000 // дедлайн сегодня/завтра
	colorWarning = 0xFFFF00 // дедлайн близко, но больше суток
	colorDone    = 0x00FF00 // уже сдано
)

// banner — заголовок уведомления.
const banner = "🚨 **DULMS Upcoming Deadlines Alert** 🚨"

// Message — payload webhook-уведомления.
type Message struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed — одна карточка уведомления.
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	URL         string `json:"url"`
}

// Poster отправляет готовый payload на webhook URL.
type Poster interface {
	Post(ctx context.Context, url string, payload any) bool
}

// Dispatcher фильтрует результат scrape и отправляет уведомление
// о скорых дедлайнах.
//
// Чистый pipeline без состояния: фильтр → рендер карточек → один POST.
// Любая неудача логируется и никогда не влияет на исход задачи.
type Dispatcher struct {
	poster    Poster
	threshold int
	logger    *slog.Logger
}

// Config — конфигурация Dispatcher.
type Config struct {
	// Poster — клиент доставки (default: NewWebhookClient).
	Poster Poster

	// ThresholdDays — порог "скорого" дедлайна в днях (default: 3).
	ThresholdDays int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Dispatcher.
func New(cfg Config) *Dispatcher {
	threshold := cfg.ThresholdDays
	if threshold <= 0 {
		threshold = defaultThresholdDays
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	poster := cfg.Poster
	if poster == nil {
		poster = NewWebhookClient(logger)
	}

	return &Dispatcher{
		poster:    poster,
		threshold: threshold,
		logger:    logger,
	}
}

// Dispatch отправляет уведомление о скорых дедлайнах из result.
//
// Если ни одна запись не проходит фильтр — сетевой вызов не делается,
// возвращается true (отправлять было нечего). Неудача доставки
// возвращает false, но никогда не паникует.
func (d *Dispatcher) Dispatch(ctx context.Context, webhookURL string, result *domain.ScrapeResult) bool {
	if webhookURL == "" {
		d.logger.Warn("no webhook URL provided, skipping notification")
		return false
	}

	upcomingAssignments := filterUpcoming(result.Assignments, d.threshold)
	upcomingQuizzes := filterUpcoming(result.Quizzes, d.threshold)

	if len(upcomingAssignments) == 0 && len(upcomingQuizzes) == 0 {
		d.logger.Info("no upcoming deadlines, skipping notification")
		return true
	}

	msg := Message{Content: banner}
	msg.Embeds = append(msg.Embeds, buildEmbeds(upcomingAssignments, domain.CategoryAssignments)...)
	msg.Embeds = append(msg.Embeds, buildEmbeds(upcomingQuizzes, domain.CategoryQuizzes)...)

	ok := d.poster.Post(ctx, webhookURL, msg)
	if ok {
		telemetry.NotificationsSent.WithLabelValues("ok").Inc()
		d.logger.Info("deadline notification sent",
			"assignments", len(upcomingAssignments),
			"quizzes", len(upcomingQuizzes),
		)
	} else {
		telemetry.NotificationsSent.WithLabelValues("failed").Inc()
		d.logger.Error("failed to send deadline notification")
	}
	return ok
}

// filterUpcoming отбирает записи с дедлайном не дальше threshold дней.
// Записи с нераспарсившейся датой (DaysRemaining == nil) не проходят никогда.
func filterUpcoming(records []domain.Record, threshold int) []domain.Record {
	var upcoming []domain.Record
	for _, rec := range records {
		if rec.DaysRemaining != nil && *rec.DaysRemaining <= threshold {
			upcoming = append(upcoming, rec)
		}
	}
	return upcoming
}

// buildEmbeds рендерит карточки для одной категории.
func buildEmbeds(records []domain.Record, category domain.Category) []Embed {
	embeds := make([]Embed, 0, len(records))
	for _, rec := range records {
		embeds = append(embeds, Embed{
			Title:       rec.Title,
			Description: describeRecord(rec),
			Color:       cardColor(rec, category),
			URL:         rec.URL,
		})
	}
	return embeds
}

// cardColor кодирует срочность цветом карточки.
//
// Красный — дедлайн через день или меньше, жёлтый — больше суток,
// зелёный перекрывает оба, если запись уже сдана (регистронезависимо,
// маркер зависит от категории).
func cardColor(rec domain.Record, category domain.Category) int {
	color := colorUrgent
	if rec.DaysRemaining != nil && *rec.DaysRemaining > 1 {
		color = colorWarning
	}
	if strings.EqualFold(rec.Status, category.DoneMarker()) {
		color = colorDone
	}
	return color
}

// describeRecord рендерит тело карточки.
func describeRecord(rec domain.Record) string {
	days := "unknown"
	if rec.DaysRemaining != nil {
		days = fmt.Sprintf("%d", *rec.DaysRemaining)
	}
	return fmt.Sprintf("**Course:** %s\n**Deadline:** %s\n**Days Remaining:** %s\n**Status:** %s",
		rec.Course, rec.Deadline, days, rec.Status)
}
