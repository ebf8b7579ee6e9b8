package service

import (
	"context"
	"errors"
	"strings"

	"plaza/api/internal/apperr"
	"plaza/api/internal/ids"
	"plaza/api/internal/models"
	"plaza/api/internal/phone"
	"plaza/api/internal/repository"
)

type GroupStore interface {
	Create(ctx context.Context, group models.Group) error
	GetOwned(ctx context.Context, id, ownerID string) (models.Group, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Group, error)
	Rename(ctx context.Context, id, ownerID, name string) error
	Delete(ctx context.Context, id, ownerID string) error
	AddMember(ctx context.Context, member models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, memberUserID string) error
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

type AppContactStore interface {
	UpsertMany(ctx context.Context, contacts []models.AppContact) error
	ListByUser(ctx context.Context, userID string) ([]models.AppContact, error)
}

type GroupService struct {
	groups      GroupStore
	appContacts AppContactStore
	hasher      *phone.Hasher
}

func NewGroupService(groups GroupStore, appContacts AppContactStore, hasher *phone.Hasher) *GroupService {
	return &GroupService{
		groups:      groups,
		appContacts: appContacts,
		hasher:      hasher,
	}
}

func (s *GroupService) Create(ctx context.Context, ownerID, name string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, apperr.InvalidState("group name is required")
	}

	group := models.Group{
		ID:      ids.New(),
		OwnerID: ownerID,
		Name:    name,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return models.Group{}, err
	}
	return group, nil
}

type GroupWithMembers struct {
	Group   models.Group
	Members []models.GroupMember
}

func (s *GroupService) List(ctx context.Context, ownerID string) ([]GroupWithMembers, error) {
	groups, err := s.groups.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]GroupWithMembers, 0, len(groups))
	for _, group := range groups {
		members, err := s.groups.ListMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, GroupWithMembers{Group: group, Members: members})
	}
	return result, nil
}

func (s *GroupService) Rename(ctx context.Context, id, ownerID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.InvalidState("group name is required")
	}
	err := s.groups.Rename(ctx, id, ownerID, name)
	if errors.Is(err, repository.ErrGroupNotFound) {
		return apperr.NotFound("group not found")
	}
	return err
}

func (s *GroupService) Delete(ctx context.Context, id, ownerID string) error {
	err := s.groups.Delete(ctx, id, ownerID)
	if errors.Is(err, repository.ErrGroupNotFound) {
		return apperr.NotFound("group not found")
	}
	return err
}

// AddMember verifies ownership before touching membership; foreign groups
// read as absent.
func (s *GroupService) AddMember(ctx context.Context, groupID, ownerID, memberUserID string) error {
	if _, err := s.groups.GetOwned(ctx, groupID, ownerID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return apperr.NotFound("group not found")
		}
		return err
	}

	return s.groups.AddMember(ctx, models.GroupMember{
		ID:           ids.New(),
		GroupID:      groupID,
		MemberUserID: memberUserID,
	})
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID, ownerID, memberUserID string) error {
	if _, err := s.groups.GetOwned(ctx, groupID, ownerID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return apperr.NotFound("group not found")
		}
		return err
	}
	return s.groups.RemoveMember(ctx, groupID, memberUserID)
}

type AppContactInput struct {
	Name  string
	Phone string
}

// SaveAppContacts bulk-upserts the caller's address book, hashing each phone
// for later matching.
func (s *GroupService) SaveAppContacts(ctx context.Context, userID string, inputs []AppContactInput) error {
	contacts := make([]models.AppContact, 0, len(inputs))
	for _, input := range inputs {
		normalized := phone.Normalize(input.Phone)
		contacts = append(contacts, models.AppContact{
			ID:        ids.New(),
			UserID:    userID,
			Name:      input.Name,
			Phone:     normalized,
			PhoneHash: s.hasher.Hash(normalized),
		})
	}
	return s.appContacts.UpsertMany(ctx, contacts)
}

func (s *GroupService) AppContacts(ctx context.Context, userID string) ([]models.AppContact, error) {
	return s.appContacts.ListByUser(ctx, userID)
}
