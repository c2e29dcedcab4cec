package letters

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/booklovin/backend/internal/app/metrics"
	"github.com/booklovin/backend/pkg/logger"
)

// DefaultSweepSchedule runs the due-letter sweep every five minutes.
const DefaultSweepSchedule = "*/5 * * * *"

// Sweeper periodically counts letters that have come due and publishes the
// number as a gauge. It implements the system service lifecycle.
type Sweeper struct {
	svc      *Service
	log      *logger.Logger
	schedule string
	cron     *cron.Cron
}

// NewSweeper builds a sweeper over the letters service. An empty schedule
// falls back to DefaultSweepSchedule.
func NewSweeper(svc *Service, schedule string, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewDefault("letters-sweeper")
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Sweeper{svc: svc, log: log, schedule: schedule}
}

// Name implements the system service interface.
func (s *Sweeper) Name() string { return "letters-sweeper" }

// Start runs one immediate sweep and then follows the cron schedule.
func (s *Sweeper) Start(ctx context.Context) error {
	s.sweep(ctx)

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.sweep(sweepCtx)
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.log.WithField("schedule", s.schedule).Info("sweeper started")
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.svc.CountDue(ctx)
	if err != nil {
		s.log.WithError(err).Warn("due-letter sweep failed")
		return
	}
	metrics.SetLettersDue(n)
	s.log.Debugf("sweep complete: %d letters due", n)
}
