package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"plaza/api/internal/apperr"
	"plaza/api/internal/ids"
	"plaza/api/internal/models"
	"plaza/api/internal/repository"
)

const inviteTTL = 7 * 24 * time.Hour

type InviteService struct {
	invites InviteStore
	now     func() time.Time
}

func NewInviteService(invites InviteStore) *InviteService {
	return &InviteService{
		invites: invites,
		now:     time.Now,
	}
}

// Generate mints a single-use code valid for seven days.
func (s *InviteService) Generate(ctx context.Context, inviterID string) (models.Invite, error) {
	code, err := newInviteCode()
	if err != nil {
		return models.Invite{}, err
	}

	invite := models.Invite{
		ID:        ids.New(),
		Code:      code,
		InviterID: inviterID,
		ExpiresAt: s.now().Add(inviteTTL),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return models.Invite{}, err
	}
	return invite, nil
}

func (s *InviteService) Get(ctx context.Context, code string) (models.Invite, error) {
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return models.Invite{}, apperr.NotFound("invite not found")
		}
		return models.Invite{}, err
	}
	return invite, nil
}

// Use redeems the code for userID: marks it consumed and creates the
// bidirectional contact with the inviter, atomically. Expired, used, and
// self-redeemed codes are rejected.
func (s *InviteService) Use(ctx context.Context, code, userID string) (models.Invite, error) {
	invite, err := s.Get(ctx, code)
	if err != nil {
		return models.Invite{}, err
	}

	now := s.now()
	switch {
	case invite.Used():
		return models.Invite{}, apperr.InvalidState("invite already used")
	case invite.ExpiredAt(now):
		return models.Invite{}, apperr.InvalidState("invite expired")
	case invite.InviterID == userID:
		return models.Invite{}, apperr.InvalidState("cannot redeem your own invite")
	}

	redeemed, err := s.invites.Redeem(ctx, code, userID, now)
	if err != nil {
		if errors.Is(err, repository.ErrInviteConsumed) {
			return models.Invite{}, apperr.Conflict("invite already used")
		}
		return models.Invite{}, err
	}
	return redeemed, nil
}

func newInviteCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
