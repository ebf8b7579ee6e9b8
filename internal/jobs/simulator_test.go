package jobs

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"plaza/api/internal/config"
	"plaza/api/internal/models"
	"plaza/api/internal/service"
)

var simTime = time.Date(2026, 3, 14, 12, 7, 30, 0, time.UTC)

type fakeStatusController struct {
	current  map[string]*models.Status
	sets     []string
	clears   []string
	setErr   error
	clearErr error
}

func newFakeStatusController() *fakeStatusController {
	return &fakeStatusController{current: make(map[string]*models.Status)}
}

func (f *fakeStatusController) SetStatus(_ context.Context, userID string, input service.SetStatusInput) (models.Status, error) {
	if f.setErr != nil {
		return models.Status{}, f.setErr
	}
	f.sets = append(f.sets, userID)
	status := models.Status{
		UserID:     userID,
		Status:     input.Status,
		Message:    input.Message,
		Location:   input.Location,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		SharedWith: input.SharedWith,
	}
	f.current[userID] = &status
	return status, nil
}

func (f *fakeStatusController) CurrentStatus(_ context.Context, userID string) *models.Status {
	return f.current[userID]
}

func (f *fakeStatusController) ClearStatus(_ context.Context, userID string) (int64, error) {
	if f.clearErr != nil {
		return 0, f.clearErr
	}
	f.clears = append(f.clears, userID)
	delete(f.current, userID)
	return 1, nil
}

type fakeJanitor struct {
	calls []string
	err   error
}

func (f *fakeJanitor) DeleteExpiredByUser(_ context.Context, userID string, _ time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, userID)
	return 0, nil
}

type fakeFriendLister struct {
	edges []models.Friend
	err   error
}

func (f *fakeFriendLister) ListIncoming(_ context.Context, _ string) ([]models.Friend, error) {
	return f.edges, f.err
}

func incomingEdges(n int) []models.Friend {
	edges := make([]models.Friend, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, models.Friend{
			UserID:       string(rune('a' + i)),
			FriendUserID: "primary",
			Status:       models.FriendAccepted,
		})
	}
	return edges
}

func newTestSimulator(cfg config.SimulatorConfig, controller *fakeStatusController, friends *fakeFriendLister, state *SimulatorState) *Simulator {
	sim := NewSimulator(cfg, controller, &fakeJanitor{}, friends, state, zerolog.Nop())
	sim.rng = rand.New(rand.NewSource(1))
	sim.now = func() time.Time { return simTime }
	return sim
}

func enabledConfig() config.SimulatorConfig {
	return config.SimulatorConfig{
		Enabled:       true,
		Interval:      10 * time.Minute,
		PrimaryUserID: "primary",
	}
}

func TestTickGating(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.SimulatorConfig
		lastRunAt time.Time
		wantRun   bool
	}{
		{
			name:    "disabled",
			cfg:     config.SimulatorConfig{Enabled: false, Interval: 10 * time.Minute, PrimaryUserID: "primary"},
			wantRun: false,
		},
		{
			name:    "no primary user",
			cfg:     config.SimulatorConfig{Enabled: true, Interval: 10 * time.Minute},
			wantRun: false,
		},
		{
			name:      "interval not elapsed",
			cfg:       enabledConfig(),
			lastRunAt: simTime.Add(-5 * time.Minute),
			wantRun:   false,
		},
		{
			name:      "interval elapsed",
			cfg:       enabledConfig(),
			lastRunAt: simTime.Add(-10 * time.Minute),
			wantRun:   true,
		},
		{
			name:    "first run",
			cfg:     enabledConfig(),
			wantRun: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := newFakeStatusController()
			friends := &fakeFriendLister{edges: incomingEdges(3)}
			state := &SimulatorState{}
			if !tt.lastRunAt.IsZero() {
				state.setLastRunAt(tt.lastRunAt)
			}

			sim := newTestSimulator(tt.cfg, controller, friends, state)
			sim.Tick(context.Background())

			ran := len(controller.sets)+len(controller.clears) > 0
			if ran != tt.wantRun {
				t.Fatalf("ran=%v, want %v (sets=%v clears=%v)", ran, tt.wantRun, controller.sets, controller.clears)
			}
			if tt.wantRun && !state.LastRunAt().Equal(simTime) {
				t.Fatalf("lastRunAt not advanced: %v", state.LastRunAt())
			}
			if !tt.wantRun && !state.LastRunAt().Equal(tt.lastRunAt) {
				t.Fatalf("lastRunAt must not move on a skipped tick: %v", state.LastRunAt())
			}
		})
	}
}

func TestTickBoundsSimulatedUsers(t *testing.T) {
	controller := newFakeStatusController()
	friends := &fakeFriendLister{edges: incomingEdges(15)}
	sim := newTestSimulator(enabledConfig(), controller, friends, &SimulatorState{})
	janitor := &fakeJanitor{}
	sim.janitor = janitor

	sim.Tick(context.Background())

	if len(janitor.calls) != maxSimulatedUsers {
		t.Fatalf("expected %d users simulated, got %d", maxSimulatedUsers, len(janitor.calls))
	}
}

func TestTickRetriesAfterFailedPass(t *testing.T) {
	controller := newFakeStatusController()
	controller.setErr = errors.New("insert failed")
	controller.clearErr = errors.New("delete failed")
	friends := &fakeFriendLister{edges: incomingEdges(3)}
	state := &SimulatorState{}
	sim := newTestSimulator(enabledConfig(), controller, friends, state)

	sim.Tick(context.Background())

	if !state.LastRunAt().IsZero() {
		t.Fatalf("lastRunAt must not advance on a failed pass: %v", state.LastRunAt())
	}

	// next tick retries immediately and succeeds
	controller.setErr = nil
	controller.clearErr = nil
	sim.Tick(context.Background())
	if !state.LastRunAt().Equal(simTime) {
		t.Fatalf("lastRunAt must advance on the clean retry: %v", state.LastRunAt())
	}
}

func TestTickListFailureSkipsPass(t *testing.T) {
	controller := newFakeStatusController()
	friends := &fakeFriendLister{err: errors.New("connection refused")}
	state := &SimulatorState{}
	sim := newTestSimulator(enabledConfig(), controller, friends, state)

	sim.Tick(context.Background())

	if len(controller.sets)+len(controller.clears) != 0 {
		t.Fatal("no status writes expected when the friend list fails")
	}
	if !state.LastRunAt().IsZero() {
		t.Fatalf("lastRunAt must not advance: %v", state.LastRunAt())
	}
}

func TestSimulatedStatusesShareWithPrimary(t *testing.T) {
	controller := newFakeStatusController()
	friends := &fakeFriendLister{edges: incomingEdges(10)}
	sim := newTestSimulator(enabledConfig(), controller, friends, &SimulatorState{})

	sim.Tick(context.Background())

	if len(controller.sets) == 0 {
		t.Fatal("expected at least one set across 10 users")
	}
	for userID, status := range controller.current {
		if len(status.SharedWith) != 1 || status.SharedWith[0] != "primary" {
			t.Fatalf("user %s status must share with the primary user, got %v", userID, status.SharedWith)
		}
	}
}

func TestRandomEndTimeBounds(t *testing.T) {
	sim := newTestSimulator(enabledConfig(), newFakeStatusController(), &fakeFriendLister{}, &SimulatorState{})

	for i := 0; i < 200; i++ {
		end := sim.randomEndTime(simTime)

		out := end.Sub(simTime)
		if out < 0 || out > 120*time.Minute {
			t.Fatalf("end time %v is %v out, want within 120m", end, out)
		}
		if !end.After(simTime) {
			t.Fatalf("end time %v must be in the future", end)
		}
		if !end.Truncate(15 * time.Minute).Equal(end) {
			t.Fatalf("end time %v must land on a quarter-hour boundary", end)
		}
	}
}
