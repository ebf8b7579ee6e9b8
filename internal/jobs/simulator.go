package jobs

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"plaza/api/internal/config"
	"plaza/api/internal/models"
	"plaza/api/internal/service"
)

// StatusController is the slice of the status service the simulator drives;
// it writes through the same paths the API does.
type StatusController interface {
	SetStatus(ctx context.Context, userID string, input service.SetStatusInput) (models.Status, error)
	CurrentStatus(ctx context.Context, userID string) *models.Status
	ClearStatus(ctx context.Context, userID string) (int64, error)
}

type StatusJanitor interface {
	DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) (int64, error)
}

type FriendLister interface {
	ListIncoming(ctx context.Context, userID string) ([]models.Friend, error)
}

// SimulatorState holds the last successful run so tests (and restarts) own
// it explicitly instead of a package global.
type SimulatorState struct {
	mu        sync.Mutex
	lastRunAt time.Time
}

func (s *SimulatorState) LastRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}

func (s *SimulatorState) setLastRunAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = t
}

const maxSimulatedUsers = 10

var simulatorMessages = []string{
	"Out for a walk, join me",
	"Coffee at the usual spot",
	"Backyard hang, come by",
	"Reading in the park",
	"Free for a quick catch-up",
	"Porch sitting, doors open",
}

var simulatorLocations = []models.StatusLocation{
	models.LocationHome,
	models.LocationGreenspace,
	models.LocationThirdPlace,
}

// Simulator randomly mutates statuses for a bounded set of synthetic users so
// development builds always have a lively feed. Never enabled in production.
type Simulator struct {
	cfg      config.SimulatorConfig
	statuses StatusController
	janitor  StatusJanitor
	friends  FriendLister
	state    *SimulatorState
	rng      *rand.Rand
	log      zerolog.Logger
	now      func() time.Time
}

func NewSimulator(
	cfg config.SimulatorConfig,
	statuses StatusController,
	janitor StatusJanitor,
	friends FriendLister,
	state *SimulatorState,
	log zerolog.Logger,
) *Simulator {
	return &Simulator{
		cfg:      cfg,
		statuses: statuses,
		janitor:  janitor,
		friends:  friends,
		state:    state,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
		now:      time.Now,
	}
}

// Tick runs one simulator pass if both gates allow it: the explicit enable
// flag and the minimum interval since the last successful run. lastRunAt only
// advances on a clean pass, so a failed pass retries on the next tick.
func (s *Simulator) Tick(ctx context.Context) {
	if !s.cfg.Enabled || s.cfg.PrimaryUserID == "" {
		return
	}

	now := s.now()
	if last := s.state.LastRunAt(); !last.IsZero() && now.Sub(last) < s.cfg.Interval {
		return
	}

	edges, err := s.friends.ListIncoming(ctx, s.cfg.PrimaryUserID)
	if err != nil {
		s.log.Error().Err(err).Msg("simulator: list friends failed")
		return
	}
	if len(edges) > maxSimulatedUsers {
		edges = edges[:maxSimulatedUsers]
	}

	clean := true
	for _, edge := range edges {
		if err := s.simulateUser(ctx, edge.UserID, now); err != nil {
			clean = false
			s.log.Error().Err(err).Str("user_id", edge.UserID).Msg("simulator: user pass failed")
		}
	}

	if clean {
		s.state.setLastRunAt(now)
		s.log.Debug().Int("users", len(edges)).Msg("simulator: pass complete")
	}
}

func (s *Simulator) simulateUser(ctx context.Context, userID string, now time.Time) error {
	if _, err := s.janitor.DeleteExpiredByUser(ctx, userID, now); err != nil {
		return err
	}

	roll := s.rng.Float64()
	switch {
	case roll < 0.4:
		_, err := s.statuses.SetStatus(ctx, userID, s.randomStatusInput(now))
		return err
	case roll < 0.7:
		if current := s.statuses.CurrentStatus(ctx, userID); current != nil {
			input := service.SetStatusInput{
				Status:     current.Status,
				Message:    simulatorMessages[s.rng.Intn(len(simulatorMessages))],
				Location:   current.Location,
				StartTime:  current.StartTime,
				EndTime:    s.randomEndTime(now),
				SharedWith: current.SharedWith,
			}
			_, err := s.statuses.SetStatus(ctx, userID, input)
			return err
		}
		_, err := s.statuses.SetStatus(ctx, userID, s.randomStatusInput(now))
		return err
	default:
		_, err := s.statuses.ClearStatus(ctx, userID)
		return err
	}
}

func (s *Simulator) randomStatusInput(now time.Time) service.SetStatusInput {
	return service.SetStatusInput{
		Status:     models.StatusAvailable,
		Message:    simulatorMessages[s.rng.Intn(len(simulatorMessages))],
		Location:   simulatorLocations[s.rng.Intn(len(simulatorLocations))],
		StartTime:  now,
		EndTime:    s.randomEndTime(now),
		SharedWith: []string{s.cfg.PrimaryUserID},
	}
}

// randomEndTime lands on a quarter-hour boundary 15 to 120 minutes out.
func (s *Simulator) randomEndTime(now time.Time) time.Time {
	next := now.Truncate(15 * time.Minute).Add(15 * time.Minute)
	return next.Add(time.Duration(s.rng.Intn(8)) * 15 * time.Minute)
}
