package service

import (
	"context"
	"time"

	"plaza/api/internal/models"
)

// Store interfaces are declared on the consumer side so the decision logic
// can be exercised against in-memory fakes. The pgx repositories satisfy
// them.

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (models.User, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListByPhoneHashes(ctx context.Context, hashes []string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, firstName, lastName, email string) error
	UpdatePhoneHash(ctx context.Context, id string, phoneHash string) error
	UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error
	Delete(ctx context.Context, id string) error
}

type StatusStore interface {
	Insert(ctx context.Context, status models.Status) error
	Update(ctx context.Context, status models.Status) error
	CurrentByUser(ctx context.Context, userID string, now time.Time) (models.Status, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	ActiveByAuthors(ctx context.Context, authorIDs []string, now time.Time) ([]models.Status, error)
	ActiveSharingWith(ctx context.Context, recipientID string, now time.Time) ([]models.Status, error)
	ActiveSharedBetween(ctx context.Context, sharerID, recipientID string, now time.Time) (models.Status, error)
}

type FriendStore interface {
	Upsert(ctx context.Context, friend models.Friend) error
	Get(ctx context.Context, userID, friendUserID string) (models.Friend, error)
	SetStatus(ctx context.Context, userID, friendUserID string, status models.FriendStatus) error
	ListOutgoing(ctx context.Context, userID string) ([]models.Friend, error)
	ListIncoming(ctx context.Context, userID string) ([]models.Friend, error)
	EdgesFrom(ctx context.Context, userIDs []string, recipientID string) ([]models.Friend, error)
}

type ContactStore interface {
	EnsureActivePair(ctx context.Context, userID, otherUserID string) error
	ListByUser(ctx context.Context, userID string) ([]models.Contact, error)
}

type InviteStore interface {
	Create(ctx context.Context, invite models.Invite) error
	GetByCode(ctx context.Context, code string) (models.Invite, error)
	Redeem(ctx context.Context, code, userID string, now time.Time) (models.Invite, error)
}

// StatusCache is the fail-open current-status cache; implementations swallow
// their own errors.
type StatusCache interface {
	GetCurrent(ctx context.Context, userID string) (models.Status, bool)
	SetCurrent(ctx context.Context, userID string, status models.Status)
	Invalidate(ctx context.Context, userID string)
}
