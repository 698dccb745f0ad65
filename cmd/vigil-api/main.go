package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Vigil/internal/api"
	"github.com/shaiso/Vigil/internal/browser"
	"github.com/shaiso/Vigil/internal/captcha"
	"github.com/shaiso/Vigil/internal/config"
	"github.com/shaiso/Vigil/internal/notify"
	"github.com/shaiso/Vigil/internal/registry"
	"github.com/shaiso/Vigil/internal/scraper"
	"github.com/shaiso/Vigil/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vigil_api_http_requests_total",
		Help: "Total HTTP requests handled by vigil_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting vigil-api")

	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Реестр задач с janitor'ом терминальных записей
	reg := registry.New(registry.Config{
		TaskTTL:         cfg.TaskTTL,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logger,
	})
	reg.Start(ctx)
	defer reg.Stop()

	// Собираем зависимости scraper'а
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

	handler := api.NewHandler(api.Config{
		Registry: reg,
		Runner:   scr,
		Logger:   logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// API маршруты
	mux.Handle("/", api.NewRouter(handler))

	addr := ":" + cfg.APIPort

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
