package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plaza/api/internal/ids"
	"plaza/api/internal/models"
)

var ErrContactNotFound = errors.New("contact not found")

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

const contactColumns = `id, user_id, contact_user_id, status, created_at, updated_at`

const upsertActiveContact = `
	INSERT INTO contacts (
		id, user_id, contact_user_id, status, created_at, updated_at
	) VALUES (
		$1, $2, $3, 'ACTIVE', NOW(), NOW()
	)
	ON CONFLICT (user_id, contact_user_id)
	DO UPDATE SET status = 'ACTIVE', updated_at = NOW()
`

// EnsureActivePair creates both directions of a contact in ACTIVE state, or
// reactivates them if either direction already exists (including BLOCKED
// rows). Both writes happen in one transaction.
func (r *ContactRepository) EnsureActivePair(ctx context.Context, userID, otherUserID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return ensureActivePairTx(ctx, tx, userID, otherUserID)
	})
}

func ensureActivePairTx(ctx context.Context, tx pgx.Tx, userID, otherUserID string) error {
	if _, err := tx.Exec(ctx, upsertActiveContact, ids.New(), userID, otherUserID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, upsertActiveContact, ids.New(), otherUserID, userID)
	return err
}

func (r *ContactRepository) Get(ctx context.Context, userID, contactUserID string) (models.Contact, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1 AND contact_user_id = $2
	`

	var contact models.Contact
	err := r.pool.QueryRow(ctx, query, userID, contactUserID).Scan(
		&contact.ID,
		&contact.UserID,
		&contact.ContactUserID,
		&contact.Status,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Contact{}, ErrContactNotFound
		}
		return models.Contact{}, err
	}
	return contact, nil
}

func (r *ContactRepository) ListByUser(ctx context.Context, userID string) ([]models.Contact, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var contact models.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.UserID,
			&contact.ContactUserID,
			&contact.Status,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
