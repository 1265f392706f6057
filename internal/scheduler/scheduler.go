package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Job is a unit of scheduled work. It gets a context bounded by the scheduler timeout.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron specs in UTC. Job failures and panics are logged, never propagated.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func New(timeout time.Duration) *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		timeout: timeout,
	}
}

// Register adds a job under a standard 5-field cron spec (or a descriptor such as @monthly).
func (s *Scheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	log.Infof("Scheduled job %s with spec %q", name, spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	log.Infof("Running scheduled job %s", name)
	if err := job(ctx); err != nil {
		log.Errorf("scheduled job %s failed after %s: %v", name, time.Since(start), err)
		return
	}
	log.Infof("Scheduled job %s finished in %s", name, time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn("scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}
