package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Vigil/internal/browser"
	"github.com/shaiso/Vigil/internal/captcha"
	"github.com/shaiso/Vigil/internal/config"
	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/notify"
	"github.com/shaiso/Vigil/internal/registry"
	"github.com/shaiso/Vigil/internal/scheduler"
	"github.com/shaiso/Vigil/internal/scraper"
	"github.com/shaiso/Vigil/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting vigil-scheduler")

	cfg := config.Load()

	if cfg.ScrapeCron == "" {
		logger.Error("SCRAPE_CRON is not set, nothing to schedule")
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := registry.New(registry.Config{
		TaskTTL:         cfg.TaskTTL,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logger,
	})
	reg.Start(ctx)
	defer reg.Stop()

	solver := captcha.NewHTTPSolver(captcha.Config{
		Endpoint: cfg.CaptchaAPIURL,
		Logger:   logger,
	})

	dispatcher := notify.New(notify.Config{
		Poster:        notify.NewWebhookClient(logger),
		ThresholdDays: cfg.DeadlineThresholdDays,
		Logger:        logger,
	})

	scr := scraper.New(scraper.Config{
		Registry:            reg,
		Sessions:            browser.NewChromeFactory(cfg.WaitTimeout),
		Solver:              solver,
		Notifier:            dispatcher,
		LoginURL:            cfg.LoginURL,
		AssignmentsURL:      cfg.AssignmentsURL,
		QuizzesURL:          cfg.QuizzesURL,
		SuccessURLPart:      cfg.SuccessURLPart,
		MaxLoginRetries:     cfg.MaxLoginRetries,
		CaptchaSolveRetries: cfg.CaptchaSolveRetries,
		WaitTimeout:         cfg.WaitTimeout,
		PollInterval:        cfg.PollInterval,
		SettleTimeout:       cfg.LoginSettleTimeout,
		Headless:            cfg.Headless,
		Logger:              logger,
	})

	sched := scheduler.New(scheduler.Config{
		Registry: reg,
		Runner:   scr,
		Params: domain.ScrapeParams{
			Username:      cfg.ScheduleUsername,
			Password:      cfg.SchedulePassword,
			CaptchaAPIKey: cfg.ScheduleCaptchaKey,
			Webhook:       cfg.ScheduleWebhook,
		},
		CronSpec: cfg.ScrapeCron,
		Logger:   logger,
	})

	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8001"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}

	server := &http.Server{Addr: port, Handler: mux}

	go func() {
		logger.Info("listening", "addr", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	server.Close()
	logger.Info("stopped")
}
