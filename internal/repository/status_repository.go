package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plaza/api/internal/models"
)

var ErrStatusNotFound = errors.New("status not found")

type StatusRepository struct {
	pool *pgxpool.Pool
}

func NewStatusRepository(pool *pgxpool.Pool) *StatusRepository {
	return &StatusRepository{pool: pool}
}

const statusColumns = `id, user_id, status, message, location, start_time, end_time, shared_with, created_at, updated_at`

func scanStatus(row pgx.Row) (models.Status, error) {
	var status models.Status
	err := row.Scan(
		&status.ID,
		&status.UserID,
		&status.Status,
		&status.Message,
		&status.Location,
		&status.StartTime,
		&status.EndTime,
		&status.SharedWith,
		&status.CreatedAt,
		&status.UpdatedAt,
	)
	return status, err
}

func (r *StatusRepository) Insert(ctx context.Context, status models.Status) error {
	const query = `
		INSERT INTO statuses (
			id, user_id, status, message, location, start_time, end_time, shared_with, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		status.ID,
		status.UserID,
		status.Status,
		status.Message,
		status.Location,
		status.StartTime,
		status.EndTime,
		status.SharedWith,
	)
	return err
}

func (r *StatusRepository) Update(ctx context.Context, status models.Status) error {
	const query = `
		UPDATE statuses
		SET status = $2, message = $3, location = $4, start_time = $5, end_time = $6,
		    shared_with = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		status.ID,
		status.Status,
		status.Message,
		status.Location,
		status.StartTime,
		status.EndTime,
		status.SharedWith,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusNotFound
	}
	return nil
}

// CurrentByUser returns the newest status whose window contains now. Both
// bounds are inclusive; the newest created_at wins when windows overlap.
func (r *StatusRepository) CurrentByUser(ctx context.Context, userID string, now time.Time) (models.Status, error) {
	const query = `
		SELECT ` + statusColumns + `
		FROM statuses
		WHERE user_id = $1 AND start_time <= $2 AND end_time >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	status, err := scanStatus(r.pool.QueryRow(ctx, query, userID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Status{}, ErrStatusNotFound
		}
		return models.Status{}, err
	}
	return status, nil
}

// DeleteByUser clears every status row the user owns and reports how many
// went away.
func (r *StatusRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM statuses WHERE user_id = $1`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *StatusRepository) DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	const query = `DELETE FROM statuses WHERE user_id = $1 AND end_time < $2`
	cmd, err := r.pool.Exec(ctx, query, userID, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ActiveByAuthors returns every active status from the given authors, newest
// first so callers can keep one per author.
func (r *StatusRepository) ActiveByAuthors(ctx context.Context, authorIDs []string, now time.Time) ([]models.Status, error) {
	const query = `
		SELECT ` + statusColumns + `
		FROM statuses
		WHERE user_id = ANY($1) AND start_time <= $2 AND end_time >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, authorIDs, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStatuses(rows)
}

// ActiveSharingWith returns active statuses from other users that name the
// recipient as a share target, newest first.
func (r *StatusRepository) ActiveSharingWith(ctx context.Context, recipientID string, now time.Time) ([]models.Status, error) {
	const query = `
		SELECT ` + statusColumns + `
		FROM statuses
		WHERE user_id != $1
		  AND shared_with @> ARRAY[$1]::text[]
		  AND start_time <= $2 AND end_time >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, recipientID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStatuses(rows)
}

// ActiveSharedBetween returns the sharer's newest active status naming the
// recipient, or ErrStatusNotFound when no share is live.
func (r *StatusRepository) ActiveSharedBetween(ctx context.Context, sharerID, recipientID string, now time.Time) (models.Status, error) {
	const query = `
		SELECT ` + statusColumns + `
		FROM statuses
		WHERE user_id = $1
		  AND shared_with @> ARRAY[$2]::text[]
		  AND start_time <= $3 AND end_time >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	status, err := scanStatus(r.pool.QueryRow(ctx, query, sharerID, recipientID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Status{}, ErrStatusNotFound
		}
		return models.Status{}, err
	}
	return status, nil
}

func (r *StatusRepository) List(ctx context.Context, limit, offset int) ([]models.Status, error) {
	const query = `
		SELECT ` + statusColumns + `
		FROM statuses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStatuses(rows)
}

func collectStatuses(rows pgx.Rows) ([]models.Status, error) {
	var statuses []models.Status
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}
