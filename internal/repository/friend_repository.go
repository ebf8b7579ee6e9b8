package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plaza/api/internal/models"
)

var ErrFriendNotFound = errors.New("friend edge not found")

type FriendRepository struct {
	pool *pgxpool.Pool
}

func NewFriendRepository(pool *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{pool: pool}
}

const friendColumns = `id, user_id, friend_user_id, status, accepted_from_status_id, created_at, updated_at`

func scanFriend(row pgx.Row) (models.Friend, error) {
	var friend models.Friend
	err := row.Scan(
		&friend.ID,
		&friend.UserID,
		&friend.FriendUserID,
		&friend.Status,
		&friend.AcceptedFromStatusID,
		&friend.CreatedAt,
		&friend.UpdatedAt,
	)
	return friend, err
}

// Upsert creates the directed edge in the given state or moves an existing
// edge into it. All relationship transitions go through here.
func (r *FriendRepository) Upsert(ctx context.Context, friend models.Friend) error {
	const query = `
		INSERT INTO friends (
			id, user_id, friend_user_id, status, accepted_from_status_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), NOW()
		)
		ON CONFLICT (user_id, friend_user_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			accepted_from_status_id = COALESCE(EXCLUDED.accepted_from_status_id, friends.accepted_from_status_id),
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		friend.ID,
		friend.UserID,
		friend.FriendUserID,
		friend.Status,
		friend.AcceptedFromStatusID,
	)
	return err
}

func (r *FriendRepository) Get(ctx context.Context, userID, friendUserID string) (models.Friend, error) {
	const query = `
		SELECT ` + friendColumns + `
		FROM friends
		WHERE user_id = $1 AND friend_user_id = $2
	`

	friend, err := scanFriend(r.pool.QueryRow(ctx, query, userID, friendUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Friend{}, ErrFriendNotFound
		}
		return models.Friend{}, err
	}
	return friend, nil
}

// SetStatus updates an existing edge only; it never creates one.
func (r *FriendRepository) SetStatus(ctx context.Context, userID, friendUserID string, status models.FriendStatus) error {
	const query = `
		UPDATE friends SET status = $3, updated_at = NOW()
		WHERE user_id = $1 AND friend_user_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, userID, friendUserID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrFriendNotFound
	}
	return nil
}

func (r *FriendRepository) ListOutgoing(ctx context.Context, userID string) ([]models.Friend, error) {
	const query = `
		SELECT ` + friendColumns + `
		FROM friends
		WHERE user_id = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectFriends(rows)
}

func (r *FriendRepository) ListIncoming(ctx context.Context, userID string) ([]models.Friend, error) {
	const query = `
		SELECT ` + friendColumns + `
		FROM friends
		WHERE friend_user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectFriends(rows)
}

// EdgesFrom returns the edges userID -> recipientID for each of the given
// user ids; used to exclude settled sharers from the pending view.
func (r *FriendRepository) EdgesFrom(ctx context.Context, userIDs []string, recipientID string) ([]models.Friend, error) {
	const query = `
		SELECT ` + friendColumns + `
		FROM friends
		WHERE user_id = ANY($1) AND friend_user_id = $2
	`
	rows, err := r.pool.Query(ctx, query, userIDs, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectFriends(rows)
}

func collectFriends(rows pgx.Rows) ([]models.Friend, error) {
	var friends []models.Friend
	for rows.Next() {
		friend, err := scanFriend(rows)
		if err != nil {
			return nil, err
		}
		friends = append(friends, friend)
	}
	return friends, rows.Err()
}
