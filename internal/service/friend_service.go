package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"plaza/api/internal/apperr"
	"plaza/api/internal/ids"
	"plaza/api/internal/models"
	"plaza/api/internal/repository"
)

type FriendService struct {
	friends  FriendStore
	statuses StatusStore
	users    UserStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewFriendService(friends FriendStore, statuses StatusStore, users UserStore, log zerolog.Logger) *FriendService {
	return &FriendService{
		friends:  friends,
		statuses: statuses,
		users:    users,
		log:      log,
		now:      time.Now,
	}
}

// FriendView is one row of the relationship list as seen by a user.
type FriendView struct {
	User      models.User
	Direction models.FriendDirection
	// Outgoing is the edge user -> other, Incoming the edge other -> user.
	// Either may be nil.
	Outgoing *models.Friend
	Incoming *models.Friend
}

// PendingInvite is a sharer whose active status names the recipient but whose
// edge is not yet settled.
type PendingInvite struct {
	User   models.User
	Status models.Status
}

// Mute parks the sharer's edge toward the recipient in MUTED. Upsert
// semantics: works whether or not an edge exists yet.
func (s *FriendService) Mute(ctx context.Context, sharerID, recipientID string) error {
	return s.upsertEdge(ctx, sharerID, recipientID, models.FriendMuted, nil)
}

// Block works like Mute but lands in BLOCKED; usable preemptively before any
// interaction. Only this one direction is touched.
func (s *FriendService) Block(ctx context.Context, sharerID, recipientID string) error {
	return s.upsertEdge(ctx, sharerID, recipientID, models.FriendBlocked, nil)
}

// Unmute returns an existing muted edge to ACCEPTED.
func (s *FriendService) Unmute(ctx context.Context, sharerID, recipientID string) error {
	return s.reopenEdge(ctx, sharerID, recipientID)
}

// Unblock returns an existing blocked edge to ACCEPTED.
func (s *FriendService) Unblock(ctx context.Context, sharerID, recipientID string) error {
	return s.reopenEdge(ctx, sharerID, recipientID)
}

func (s *FriendService) reopenEdge(ctx context.Context, sharerID, recipientID string) error {
	err := s.friends.SetStatus(ctx, sharerID, recipientID, models.FriendAccepted)
	if errors.Is(err, repository.ErrFriendNotFound) {
		return apperr.NotFound("friend not found")
	}
	return err
}

// Accept settles a share invitation. The sharer must have a currently active
// status naming the recipient; otherwise the invitation is gone.
func (s *FriendService) Accept(ctx context.Context, recipientID, sharerID string) error {
	status, err := s.statuses.ActiveSharedBetween(ctx, sharerID, recipientID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrStatusNotFound) {
			return apperr.InvalidState("invitation expired")
		}
		return err
	}

	return s.upsertEdge(ctx, sharerID, recipientID, models.FriendAccepted, &status.ID)
}

func (s *FriendService) upsertEdge(ctx context.Context, userID, friendUserID string, status models.FriendStatus, acceptedFromStatusID *string) error {
	if userID == friendUserID {
		return apperr.InvalidState("cannot befriend yourself")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	return s.friends.Upsert(ctx, models.Friend{
		ID:                   ids.New(),
		UserID:               userID,
		FriendUserID:         friendUserID,
		Status:               status,
		AcceptedFromStatusID: acceptedFromStatusID,
	})
}

// Friends returns the relationship list: mutual first, then incoming, then
// outgoing, ties broken by case-insensitive full name. Read failures degrade
// to an empty list.
func (s *FriendService) Friends(ctx context.Context, userID string) []FriendView {
	outgoing, err := s.friends.ListOutgoing(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("friends list degraded to empty")
		return []FriendView{}
	}
	incoming, err := s.friends.ListIncoming(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("friends list degraded to empty")
		return []FriendView{}
	}

	relations := classifyFriends(outgoing, incoming)
	if len(relations) == 0 {
		return []FriendView{}
	}

	otherIDs := make([]string, 0, len(relations))
	for id := range relations {
		otherIDs = append(otherIDs, id)
	}
	users, err := s.users.GetManyByIDs(ctx, otherIDs)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("friends list degraded to empty")
		return []FriendView{}
	}

	views := make([]FriendView, 0, len(users))
	for _, user := range users {
		rel := relations[user.ID]
		views = append(views, FriendView{
			User:      user,
			Direction: rel.direction(),
			Outgoing:  rel.outgoing,
			Incoming:  rel.incoming,
		})
	}
	sortFriendViews(views)
	return views
}

// PendingFriends derives the invite list: one entry per sharer with an active
// status naming the recipient and no settled edge yet. Newest status per
// sharer wins. Read failures degrade to an empty list.
func (s *FriendService) PendingFriends(ctx context.Context, recipientID string) []PendingInvite {
	statuses, err := s.statuses.ActiveSharingWith(ctx, recipientID, s.now())
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", recipientID).Msg("pending list degraded to empty")
		return []PendingInvite{}
	}
	if len(statuses) == 0 {
		return []PendingInvite{}
	}

	// rows arrive newest first; keep the first status seen per sharer
	newestPerSharer := make(map[string]models.Status)
	sharerIDs := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if _, ok := newestPerSharer[status.UserID]; ok {
			continue
		}
		newestPerSharer[status.UserID] = status
		sharerIDs = append(sharerIDs, status.UserID)
	}

	edges, err := s.friends.EdgesFrom(ctx, sharerIDs, recipientID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", recipientID).Msg("pending list degraded to empty")
		return []PendingInvite{}
	}
	for _, edge := range edges {
		if edge.Settled() {
			delete(newestPerSharer, edge.UserID)
		}
	}
	if len(newestPerSharer) == 0 {
		return []PendingInvite{}
	}

	remaining := make([]string, 0, len(newestPerSharer))
	for id := range newestPerSharer {
		remaining = append(remaining, id)
	}
	users, err := s.users.GetManyByIDs(ctx, remaining)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", recipientID).Msg("pending list degraded to empty")
		return []PendingInvite{}
	}

	invites := make([]PendingInvite, 0, len(users))
	for _, user := range users {
		invites = append(invites, PendingInvite{
			User:   user,
			Status: newestPerSharer[user.ID],
		})
	}
	sort.Slice(invites, func(i, j int) bool {
		return invites[i].Status.CreatedAt.After(invites[j].Status.CreatedAt)
	})
	return invites
}

type relation struct {
	outgoing *models.Friend
	incoming *models.Friend
}

func (r relation) direction() models.FriendDirection {
	switch {
	case r.outgoing != nil && r.incoming != nil:
		return models.DirectionMutual
	case r.incoming != nil:
		return models.DirectionIncoming
	default:
		return models.DirectionOutgoing
	}
}

// classifyFriends unions the two edge directions, keyed by the other user.
// BLOCKED rows never enter the union, so a pair with one blocked direction
// degrades to a one-way relationship.
func classifyFriends(outgoing, incoming []models.Friend) map[string]relation {
	relations := make(map[string]relation)
	for i := range outgoing {
		edge := outgoing[i]
		if edge.Status == models.FriendBlocked {
			continue
		}
		rel := relations[edge.FriendUserID]
		rel.outgoing = &outgoing[i]
		relations[edge.FriendUserID] = rel
	}
	for i := range incoming {
		edge := incoming[i]
		if edge.Status == models.FriendBlocked {
			continue
		}
		rel := relations[edge.UserID]
		rel.incoming = &incoming[i]
		relations[edge.UserID] = rel
	}
	return relations
}

var directionRank = map[models.FriendDirection]int{
	models.DirectionMutual:   0,
	models.DirectionIncoming: 1,
	models.DirectionOutgoing: 2,
}

func sortFriendViews(views []FriendView) {
	sort.Slice(views, func(i, j int) bool {
		ri, rj := directionRank[views[i].Direction], directionRank[views[j].Direction]
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(views[i].User.FullName()) < strings.ToLower(views[j].User.FullName())
	})
}
