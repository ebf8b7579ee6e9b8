package models

import "time"

type FriendStatus string

const (
	FriendPending  FriendStatus = "PENDING"
	FriendAccepted FriendStatus = "ACCEPTED"
	FriendMuted    FriendStatus = "MUTED"
	FriendBlocked  FriendStatus = "BLOCKED"
)

// Friend is a single directed edge userID -> friendUserID. The two directions
// between a pair of users are independent rows; a block one way says nothing
// about the other way.
type Friend struct {
	ID                   string
	UserID               string
	FriendUserID         string
	Status               FriendStatus
	AcceptedFromStatusID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Settled reports whether the edge no longer counts as a pending share
// invitation.
func (f Friend) Settled() bool {
	switch f.Status {
	case FriendAccepted, FriendMuted, FriendBlocked:
		return true
	}
	return false
}

// FriendDirection classifies a relationship as seen from one user.
type FriendDirection string

const (
	DirectionMutual   FriendDirection = "mutual"
	DirectionIncoming FriendDirection = "incoming"
	DirectionOutgoing FriendDirection = "outgoing"
)
