package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Loader reloads the price documents.
type Loader interface {
	Load(ctx context.Context) error
}

// Scheduler periodically reloads the price history.
type Scheduler struct {
	scheduler *gocron.Scheduler
	loader    Loader
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. Each reload is bounded by timeout.
func New(loader Loader, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		loader:    loader,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the reload job and starts the underlying scheduler. The
// first run happens one interval after Start.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started", "interval", s.interval)
	return nil
}

func (s *Scheduler) run() {
	s.logger.Debug("scheduler: reloading price history")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.loader.Load(ctx); err != nil {
		s.logger.Warn("scheduler: reload failed", "error", err)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
