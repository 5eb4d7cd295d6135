package scheduler

import (
	"context"
	"fmt"

	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron specs.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. Jobs are skipped, not stacked, when a previous
// run is still in progress.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds job under spec ("@every 1h", "0 9 * * *", ...).
func (s *Scheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		logger.Error("Failed to add cron job", err, map[string]interface{}{
			"job":  name,
			"spec": spec,
		})
		return fmt.Errorf("scheduler: register %s: %w", name, err)
	}

	logger.Info("Scheduled job registered", map[string]interface{}{
		"job":  name,
		"spec": spec,
	})
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	logger.Debug("Starting scheduled job", map[string]interface{}{"job": name})

	if err := job(s.ctx); err != nil {
		logger.Error("Scheduled job failed", err, map[string]interface{}{"job": name})
		return
	}

	logger.Debug("Scheduled job finished", map[string]interface{}{"job": name})
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{"jobs": s.Len()})
}

// Stop cancels in-flight jobs and waits for them to return.
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler...", nil)
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped", nil)
}
