package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler drives the simulator once a minute; the simulator applies its own
// enable flag and interval gate on top.
type Scheduler struct {
	cron      *cron.Cron
	simulator *Simulator
	log       zerolog.Logger
}

func NewScheduler(simulator *Simulator, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		simulator: simulator,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.simulator == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 * * * * *", s.runSimulator); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish, up to a
// short grace period.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) runSimulator() {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("error", r).Msg("simulator tick panicked")
		}
	}()

	s.simulator.Tick(ctx)
}
