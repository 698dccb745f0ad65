package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Vigil/internal/domain"
	"github.com/shaiso/Vigil/internal/registry"
)

// Runner выполняет scrape-задачу. Реализуется scraper.Scraper.
type Runner interface {
	Run(ctx context.Context, taskID domain.TaskID, params domain.ScrapeParams)
}

// Scheduler — планировщик периодических scrape-задач.
type Scheduler struct {
	registry *registry.Registry
	runner   Runner
	params   domain.ScrapeParams
	spec     string
	logger   *slog.Logger

	cron    *cron.Cron
	running atomic.Bool
}

// Config — конфигурация Scheduler.
type Config struct {
	// Registry — реестр задач (обязательно).
	Registry *registry.Registry

	// Runner — исполнитель задач (обязательно).
	Runner Runner

	// Params — credentials для запланированных задач.
	Params domain.ScrapeParams

	// CronSpec — расписание в стандартном 5-польном формате.
	CronSpec string

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		registry: cfg.Registry,
		runner:   cfg.Runner,
		params:   cfg.Params,
		spec:     cfg.CronSpec,
		logger:   logger,
	}
}

// Start валидирует расписание и запускает cron-цикл.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.params.Username == "" || s.params.Password == "" {
		return fmt.Errorf("scheduler requires credentials")
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "cron", s.spec)
	return nil
}

// Stop останавливает cron-цикл и дожидается завершения текущего тика.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// tick выполняет одну запланированную задачу.
// Предыдущая ещё в работе — тик пропускается, а не ставится в очередь:
// scrape занимает минуты, накапливать отставшие запуски бессмысленно.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous scheduled scrape still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	taskID := s.registry.Create()
	s.logger.Info("scheduled scrape started", "task_id", taskID)

	s.runner.Run(ctx, taskID, s.params)

	status, _ := s.registry.GetStatus(taskID)
	s.logger.Info("scheduled scrape finished", "task_id", taskID, "status", status)
}
