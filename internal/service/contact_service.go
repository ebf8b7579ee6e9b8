package service

import (
	"context"

	"github.com/rs/zerolog"

	"plaza/api/internal/models"
	"plaza/api/internal/phone"
)

type ContactService struct {
	contacts ContactStore
	users    UserStore
	hasher   *phone.Hasher
	log      zerolog.Logger
}

func NewContactService(contacts ContactStore, users UserStore, hasher *phone.Hasher, log zerolog.Logger) *ContactService {
	return &ContactService{
		contacts: contacts,
		users:    users,
		hasher:   hasher,
		log:      log,
	}
}

// HashPhones maps raw phone numbers to their server-side hashes so clients
// never need the secret.
func (s *ContactService) HashPhones(phoneNumbers []string) []string {
	hashes := make([]string, 0, len(phoneNumbers))
	for _, number := range phoneNumbers {
		hashes = append(hashes, s.hasher.Hash(number))
	}
	return hashes
}

type CheckResult struct {
	ExistingUsers []models.User
	NonUserHashes []string
}

// CheckContacts classifies hashes into "belongs to a registered user" and
// not, with no side effects; the client uses this to split add vs. invite.
func (s *ContactService) CheckContacts(ctx context.Context, phoneHashes []string) (CheckResult, error) {
	users, err := s.users.ListByPhoneHashes(ctx, phoneHashes)
	if err != nil {
		return CheckResult{}, err
	}

	registered := make(map[string]struct{}, len(users))
	for _, user := range users {
		if user.PhoneHash != nil {
			registered[*user.PhoneHash] = struct{}{}
		}
	}

	result := CheckResult{ExistingUsers: users}
	for _, hash := range phoneHashes {
		if _, ok := registered[hash]; !ok {
			result.NonUserHashes = append(result.NonUserHashes, hash)
		}
	}
	return result, nil
}

type MatchResult struct {
	Matched int
	Users   []models.User
}

// MatchContacts links the caller to every registered user whose phone hash is
// in the given set. Pairs are created ACTIVE in both directions; a pair
// sitting in BLOCKED comes back to ACTIVE. Hashes with no matching user are
// silently dropped.
func (s *ContactService) MatchContacts(ctx context.Context, userID string, phoneHashes []string) (MatchResult, error) {
	users, err := s.users.ListByPhoneHashes(ctx, phoneHashes)
	if err != nil {
		return MatchResult{}, err
	}

	result := MatchResult{Users: []models.User{}}
	for _, user := range users {
		if user.ID == userID {
			continue
		}
		if err := s.contacts.EnsureActivePair(ctx, userID, user.ID); err != nil {
			return MatchResult{}, err
		}
		result.Users = append(result.Users, user)
	}
	result.Matched = len(result.Users)
	return result, nil
}

// ContactView joins a contact row with the other user's profile.
type ContactView struct {
	Contact models.Contact
	User    models.User
}

// Contacts lists the caller's contact book. Read failures degrade to empty.
func (s *ContactService) Contacts(ctx context.Context, userID string) []ContactView {
	contacts, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("contact list degraded to empty")
		return []ContactView{}
	}
	if len(contacts) == 0 {
		return []ContactView{}
	}

	otherIDs := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		otherIDs = append(otherIDs, contact.ContactUserID)
	}
	users, err := s.users.GetManyByIDs(ctx, otherIDs)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("contact list degraded to empty")
		return []ContactView{}
	}
	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	views := make([]ContactView, 0, len(contacts))
	for _, contact := range contacts {
		user, ok := byID[contact.ContactUserID]
		if !ok {
			continue
		}
		views = append(views, ContactView{Contact: contact, User: user})
	}
	return views
}
