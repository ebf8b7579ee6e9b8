package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"plaza/api/internal/apperr"
	"plaza/api/internal/ids"
	"plaza/api/internal/models"
	"plaza/api/internal/repository"
)

const (
	maxMessageLength = 140

	// Statuses about to lapse are suppressed from friend feeds so nobody
	// taps into a plan that ends before they arrive.
	expiringSoonGrace = 60 * time.Second
)

type StatusService struct {
	statuses StatusStore
	friends  FriendStore
	cache    StatusCache
	log      zerolog.Logger
	now      func() time.Time
}

func NewStatusService(statuses StatusStore, friends FriendStore, cache StatusCache, log zerolog.Logger) *StatusService {
	return &StatusService{
		statuses: statuses,
		friends:  friends,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

type SetStatusInput struct {
	Status     models.StatusKind
	Message    string
	Location   models.StatusLocation
	StartTime  time.Time
	EndTime    time.Time
	SharedWith []string
}

// SetStatus creates the caller's status, updating the currently active one in
// place when there is one so a user never accumulates two live windows.
func (s *StatusService) SetStatus(ctx context.Context, userID string, input SetStatusInput) (models.Status, error) {
	if len(input.Message) > maxMessageLength {
		return models.Status{}, apperr.InvalidState("message exceeds 140 characters")
	}
	if !input.EndTime.After(input.StartTime) {
		return models.Status{}, apperr.InvalidState("endTime must be after startTime")
	}

	now := s.now()

	current, err := s.statuses.CurrentByUser(ctx, userID, now)
	switch {
	case err == nil:
		current.Status = input.Status
		current.Message = input.Message
		current.Location = input.Location
		current.StartTime = input.StartTime
		current.EndTime = input.EndTime
		current.SharedWith = input.SharedWith
		if err := s.statuses.Update(ctx, current); err != nil {
			return models.Status{}, err
		}
		s.invalidate(ctx, userID)
		return current, nil
	case errors.Is(err, repository.ErrStatusNotFound):
		// fall through to insert
	default:
		return models.Status{}, err
	}

	status := models.Status{
		ID:         ids.New(),
		UserID:     userID,
		Status:     input.Status,
		Message:    input.Message,
		Location:   input.Location,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		SharedWith: input.SharedWith,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.statuses.Insert(ctx, status); err != nil {
		return models.Status{}, err
	}
	s.invalidate(ctx, userID)
	return status, nil
}

// CurrentStatus returns the caller's active status or nil. Lookup failures
// degrade to "no status"; a broken read never fails the home screen.
func (s *StatusService) CurrentStatus(ctx context.Context, userID string) *models.Status {
	now := s.now()

	if s.cache != nil {
		if cached, ok := s.cache.GetCurrent(ctx, userID); ok {
			if cached.ActiveAt(now) {
				return &cached
			}
			s.cache.Invalidate(ctx, userID)
		}
	}

	status, err := s.statuses.CurrentByUser(ctx, userID, now)
	if err != nil {
		if !errors.Is(err, repository.ErrStatusNotFound) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("current status lookup failed")
		}
		return nil
	}

	if s.cache != nil {
		s.cache.SetCurrent(ctx, userID, status)
	}
	return &status
}

// ClearStatus deletes every status row the user owns.
func (s *StatusService) ClearStatus(ctx context.Context, userID string) (int64, error) {
	count, err := s.statuses.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)
	return count, nil
}

// FriendStatuses assembles the activity feed: one active status per friend,
// muted authors dropped unless asked for, and anything expiring inside the
// grace window suppressed. Internal failures degrade to an empty feed.
func (s *StatusService) FriendStatuses(ctx context.Context, userID string, includeMuted bool) []models.Status {
	now := s.now()

	outgoing, err := s.friends.ListOutgoing(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("friend feed degraded to empty")
		return []models.Status{}
	}
	incoming, err := s.friends.ListIncoming(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("friend feed degraded to empty")
		return []models.Status{}
	}

	authorIDs := feedAuthors(userID, outgoing, incoming, includeMuted)
	if len(authorIDs) == 0 {
		return []models.Status{}
	}

	statuses, err := s.statuses.ActiveByAuthors(ctx, authorIDs, now)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("friend feed degraded to empty")
		return []models.Status{}
	}

	// rows arrive newest first; keep the first status seen per author
	feed := make([]models.Status, 0, len(statuses))
	seen := make(map[string]struct{}, len(statuses))
	for _, status := range statuses {
		if _, ok := seen[status.UserID]; ok {
			continue
		}
		seen[status.UserID] = struct{}{}
		if status.EndTime.Sub(now) <= expiringSoonGrace {
			continue
		}
		feed = append(feed, status)
	}
	return feed
}

// feedAuthors picks the friend ids whose statuses belong in the feed: the
// non-blocked relationship union, minus authors the caller has muted (an
// edge author -> caller in MUTED) unless muted content was requested.
func feedAuthors(userID string, outgoing, incoming []models.Friend, includeMuted bool) []string {
	authors := make(map[string]struct{})
	for _, edge := range outgoing {
		if edge.Status != models.FriendBlocked {
			authors[edge.FriendUserID] = struct{}{}
		}
	}
	for _, edge := range incoming {
		if edge.Status == models.FriendBlocked {
			continue
		}
		if edge.Status == models.FriendMuted && !includeMuted {
			continue
		}
		authors[edge.UserID] = struct{}{}
	}

	if !includeMuted {
		for _, edge := range incoming {
			if edge.Status == models.FriendMuted {
				delete(authors, edge.UserID)
			}
		}
	}

	ids := make([]string, 0, len(authors))
	for id := range authors {
		if id != userID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *StatusService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}
