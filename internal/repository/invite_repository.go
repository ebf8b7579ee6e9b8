package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plaza/api/internal/models"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteConsumed = errors.New("invite already consumed")
)

type InviteRepository struct {
	pool *pgxpool.Pool
}

func NewInviteRepository(pool *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{pool: pool}
}

const inviteColumns = `id, code, inviter_id, expires_at, used_by_id, used_at, created_at`

func scanInvite(row pgx.Row) (models.Invite, error) {
	var invite models.Invite
	err := row.Scan(
		&invite.ID,
		&invite.Code,
		&invite.InviterID,
		&invite.ExpiresAt,
		&invite.UsedByID,
		&invite.UsedAt,
		&invite.CreatedAt,
	)
	return invite, err
}

func (r *InviteRepository) Create(ctx context.Context, invite models.Invite) error {
	const query = `
		INSERT INTO invites (
			id, code, inviter_id, expires_at, created_at
		) VALUES (
			$1, $2, $3, $4, NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		invite.ID,
		invite.Code,
		invite.InviterID,
		invite.ExpiresAt,
	)
	return err
}

func (r *InviteRepository) GetByCode(ctx context.Context, code string) (models.Invite, error) {
	const query = `SELECT ` + inviteColumns + ` FROM invites WHERE code = $1`

	invite, err := scanInvite(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Invite{}, ErrInviteNotFound
		}
		return models.Invite{}, err
	}
	return invite, nil
}

// Redeem marks the invite used by userID and creates the bidirectional
// contact between inviter and redeemer, atomically. The guarded UPDATE makes
// redemption single-use even under concurrent attempts.
func (r *InviteRepository) Redeem(ctx context.Context, code, userID string, now time.Time) (models.Invite, error) {
	var invite models.Invite
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const consume = `
			UPDATE invites
			SET used_by_id = $2, used_at = $3
			WHERE code = $1 AND used_by_id IS NULL AND expires_at >= $3
			RETURNING ` + inviteColumns + `
		`
		var err error
		invite, err = scanInvite(tx.QueryRow(ctx, consume, code, userID, now))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInviteConsumed
			}
			return err
		}
		return ensureActivePairTx(ctx, tx, invite.InviterID, userID)
	})
	if err != nil {
		return models.Invite{}, err
	}
	return invite, nil
}
