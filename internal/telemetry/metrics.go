package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики Vigil.
//
// Экспортируются на /metrics endpoint каждого бинарника.
var (
	// TasksCreated — количество созданных scrape-задач.
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vigil_tasks_created_total",
		Help: "Total number of scrape tasks created.",
	})

	// TasksFinished — количество завершённых задач по терминальному статусу.
	TasksFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigil_tasks_finished_total",
		Help: "Total number of scrape tasks finished, by terminal status.",
	}, []string{"status"})

	// CaptchaSolveAttempts — количество обращений к сервису распознавания CAPTCHA.
	CaptchaSolveAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigil_captcha_solve_attempts_total",
		Help: "Total number of CAPTCHA solve attempts, by outcome.",
	}, []string{"outcome"})

	// NotificationsSent — количество отправленных webhook-уведомлений.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigil_notifications_sent_total",
		Help: "Total number of webhook notifications, by outcome.",
	}, []string{"outcome"})

	// ScrapeDuration — длительность полного scrape-прогона.
	ScrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vigil_scrape_duration_seconds",
		Help:    "Duration of a full scrape run in seconds.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)
