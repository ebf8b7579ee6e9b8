package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"plaza/api/internal/apperr"
	"plaza/api/internal/ids"
	"plaza/api/internal/media/sniffer"
	"plaza/api/internal/models"
	"plaza/api/internal/phone"
	"plaza/api/internal/repository"
	"plaza/api/internal/security"
)

type AvatarStore interface {
	PutAvatar(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
}

type UserService struct {
	users   UserStore
	avatars AvatarStore
	hasher  *phone.Hasher
	log     zerolog.Logger
}

func NewUserService(users UserStore, avatars AvatarStore, hasher *phone.Hasher, log zerolog.Logger) *UserService {
	return &UserService{
		users:   users,
		avatars: avatars,
		hasher:  hasher,
		log:     log,
	}
}

// Resolve maps a verified identity-provider subject to the internal user,
// creating the account on first sight.
func (s *UserService) Resolve(ctx context.Context, claims security.IdentityClaims) (models.User, error) {
	user, err := s.users.GetByExternalAuthID(ctx, claims.ExternalAuthID())
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	user = models.User{
		ID:             ids.New(),
		ExternalAuthID: claims.ExternalAuthID(),
		FirstName:      claims.FirstName,
		LastName:       claims.LastName,
		Email:          claims.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("user created from first sign-in")
	return user, nil
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
}

// UpdateProfile writes profile fields and, when the phone changes, rebinds
// the phone hash. A hash already bound to another account is a conflict.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (models.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, input.FirstName, input.LastName, input.Email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, err
	}

	if input.Phone != nil {
		hash := s.hasher.Hash(*input.Phone)
		if err := s.users.UpdatePhoneHash(ctx, userID, hash); err != nil {
			if errors.Is(err, repository.ErrPhoneHashTaken) {
				return models.User{}, apperr.Conflict("phone number already registered")
			}
			return models.User{}, err
		}
	}

	return s.users.GetByID(ctx, userID)
}

// Delete removes the account; everything hanging off it cascades away.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.NotFound("user not found")
	}
	return err
}

// UploadAvatar sniffs the upload, rejects non-raster content, stores the
// object, and binds the resulting URL to the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, reader io.Reader, size int64) (string, error) {
	result, head, err := sniffer.Detect(reader)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnsupportedType) {
			return "", apperr.InvalidState("avatar must be jpeg, png, or webp")
		}
		return "", err
	}

	body := io.MultiReader(bytes.NewReader(head), reader)
	objectKey := fmt.Sprintf("%s/%s.%s", userID, ids.New(), result.Ext)

	url, err := s.avatars.PutAvatar(ctx, objectKey, body, size, result.MIME)
	if err != nil {
		return "", err
	}

	if err := s.users.UpdateAvatarURL(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}
