package daemon

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/stipend"
)

// Scheduler runs the momentum sweeps on their cron schedules. The decay
// sweep is not idempotent per call, so the once-per-day guarantee lives
// here, not in the stipend service.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler wires the stipend sweeps into a cron runner. Individual
// sweep failures are logged; the schedule keeps running.
func NewScheduler(st *stipend.Service, cfg SweepConfig, log zerolog.Logger) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(cfg.DecaySchedule, func() {
		n, err := st.ApplyDailyDecay()
		if err != nil {
			log.Error().Err(err).Msg("decay sweep failed")
			return
		}
		log.Info().Int("processed", n).Msg("decay sweep finished")
	}); err != nil {
		return nil, fmt.Errorf("schedule decay sweep: %w", err)
	}

	if _, err := c.AddFunc(cfg.InactivitySchedule, func() {
		paused, err := st.CheckInactiveUsers()
		if err != nil {
			log.Error().Err(err).Msg("inactivity sweep failed")
			return
		}
		log.Info().Int("paused", len(paused)).Msg("inactivity sweep finished")
	}); err != nil {
		return nil, fmt.Errorf("schedule inactivity sweep: %w", err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start begins running the schedules in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("sweep scheduler started")
}

// Stop stops the scheduler and waits for any running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("sweep scheduler stopped")
}
