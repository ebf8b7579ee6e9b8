package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plaza/api/internal/models"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

func (r *GroupRepository) Create(ctx context.Context, group models.Group) error {
	const query = `
		INSERT INTO groups (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, group.ID, group.OwnerID, group.Name)
	return err
}

func (r *GroupRepository) GetOwned(ctx context.Context, id, ownerID string) (models.Group, error) {
	const query = `
		SELECT id, owner_id, name, created_at, updated_at
		FROM groups
		WHERE id = $1 AND owner_id = $2
	`

	var group models.Group
	err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&group.ID,
		&group.OwnerID,
		&group.Name,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return group, nil
}

func (r *GroupRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Group, error) {
	const query = `
		SELECT id, owner_id, name, created_at, updated_at
		FROM groups
		WHERE owner_id = $1
		ORDER BY name ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(
			&group.ID,
			&group.OwnerID,
			&group.Name,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *GroupRepository) Rename(ctx context.Context, id, ownerID, name string) error {
	const query = `
		UPDATE groups SET name = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, ownerID, name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) Delete(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM groups WHERE id = $1 AND owner_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *GroupRepository) AddMember(ctx context.Context, member models.GroupMember) error {
	const query = `
		INSERT INTO group_members (id, group_id, member_user_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (group_id, member_user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, member.ID, member.GroupID, member.MemberUserID)
	return err
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, memberUserID string) error {
	const query = `DELETE FROM group_members WHERE group_id = $1 AND member_user_id = $2`
	_, err := r.pool.Exec(ctx, query, groupID, memberUserID)
	return err
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	const query = `
		SELECT id, group_id, member_user_id, created_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var member models.GroupMember
		if err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.MemberUserID,
			&member.CreatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
