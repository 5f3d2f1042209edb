package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// MinimumSweepInterval bounds how often idle sessions are checked.
const MinimumSweepInterval = 10 * time.Second

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	registry  *Registry
	idle      time.Duration
	log       *zap.Logger
}

// New creates a scheduler closing registry sessions idle for longer than idle
func New(registry *Registry, idle time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		registry:  registry,
		idle:      idle,
		log:       log,
	}
}

// Interval is the time between two sweeps.
func (s *Scheduler) Interval() time.Duration {
	return max(s.idle/4, MinimumSweepInterval)
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.Interval()).Do(s.sweep); err != nil {
		return err
	}
	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweep() {
	closed, err := s.registry.Sweep(s.idle)
	if len(closed) > 0 {
		s.log.Info("Closed idle sessions", zap.Strings("sessions", closed))
	}
	if err != nil {
		s.log.Warn("Errors while closing idle sessions", zap.Error(err))
	}
}
