package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plaza/api/internal/models"
)

type AppContactRepository struct {
	pool *pgxpool.Pool
}

func NewAppContactRepository(pool *pgxpool.Pool) *AppContactRepository {
	return &AppContactRepository{pool: pool}
}

// UpsertMany replaces name/hash details for address-book rows keyed by owner
// and normalized phone.
func (r *AppContactRepository) UpsertMany(ctx context.Context, contacts []models.AppContact) error {
	const query = `
		INSERT INTO app_contacts (
			id, user_id, name, phone, phone_hash, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), NOW()
		)
		ON CONFLICT (user_id, phone)
		DO UPDATE SET
			name = EXCLUDED.name,
			phone_hash = EXCLUDED.phone_hash,
			updated_at = NOW()
	`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, contact := range contacts {
			if _, err := tx.Exec(ctx, query,
				contact.ID,
				contact.UserID,
				contact.Name,
				contact.Phone,
				contact.PhoneHash,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AppContactRepository) ListByUser(ctx context.Context, userID string) ([]models.AppContact, error) {
	const query = `
		SELECT id, user_id, name, phone, phone_hash, created_at, updated_at
		FROM app_contacts
		WHERE user_id = $1
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.AppContact
	for rows.Next() {
		var contact models.AppContact
		if err := rows.Scan(
			&contact.ID,
			&contact.UserID,
			&contact.Name,
			&contact.Phone,
			&contact.PhoneHash,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
