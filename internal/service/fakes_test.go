package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"plaza/api/internal/models"
	"plaza/api/internal/repository"
)

// In-memory stores backing the service tests.

type fakeUserStore struct {
	users map[string]models.User
	err   error
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[string]models.User)}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	if f.err != nil {
		return f.err
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByExternalAuthID(_ context.Context, externalAuthID string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	for _, user := range f.users {
		if user.ExternalAuthID == externalAuthID {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetManyByIDs(_ context.Context, ids []string) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var users []models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeUserStore) ListByPhoneHashes(_ context.Context, hashes []string) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	hashSet := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		hashSet[hash] = struct{}{}
	}
	ids := make([]string, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var users []models.User
	for _, id := range ids {
		user := f.users[id]
		if user.PhoneHash == nil {
			continue
		}
		if _, ok := hashSet[*user.PhoneHash]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id string, firstName, lastName, email string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.FirstName, user.LastName, user.Email = firstName, lastName, email
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) UpdatePhoneHash(_ context.Context, id string, phoneHash string) error {
	for otherID, other := range f.users {
		if otherID != id && other.PhoneHash != nil && *other.PhoneHash == phoneHash {
			return repository.ErrPhoneHashTaken
		}
	}
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PhoneHash = &phoneHash
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) UpdateAvatarURL(_ context.Context, id string, avatarURL string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.AvatarURL = &avatarURL
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeStatusStore struct {
	statuses []models.Status
	err      error
}

func (f *fakeStatusStore) Insert(_ context.Context, status models.Status) error {
	if f.err != nil {
		return f.err
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeStatusStore) Update(_ context.Context, status models.Status) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.statuses {
		if f.statuses[i].ID == status.ID {
			f.statuses[i] = status
			return nil
		}
	}
	return repository.ErrStatusNotFound
}

func (f *fakeStatusStore) newestFirst() []models.Status {
	out := make([]models.Status, len(f.statuses))
	copy(out, f.statuses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (f *fakeStatusStore) CurrentByUser(_ context.Context, userID string, now time.Time) (models.Status, error) {
	if f.err != nil {
		return models.Status{}, f.err
	}
	for _, status := range f.newestFirst() {
		if status.UserID == userID && status.ActiveAt(now) {
			return status, nil
		}
	}
	return models.Status{}, repository.ErrStatusNotFound
}

func (f *fakeStatusStore) DeleteByUser(_ context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var kept []models.Status
	var count int64
	for _, status := range f.statuses {
		if status.UserID == userID {
			count++
			continue
		}
		kept = append(kept, status)
	}
	f.statuses = kept
	return count, nil
}

func (f *fakeStatusStore) ActiveByAuthors(_ context.Context, authorIDs []string, now time.Time) ([]models.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	authors := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}
	var out []models.Status
	for _, status := range f.newestFirst() {
		if _, ok := authors[status.UserID]; ok && status.ActiveAt(now) {
			out = append(out, status)
		}
	}
	return out, nil
}

func (f *fakeStatusStore) ActiveSharingWith(_ context.Context, recipientID string, now time.Time) ([]models.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Status
	for _, status := range f.newestFirst() {
		if status.UserID != recipientID && status.ActiveAt(now) && status.SharesWith(recipientID) {
			out = append(out, status)
		}
	}
	return out, nil
}

func (f *fakeStatusStore) ActiveSharedBetween(_ context.Context, sharerID, recipientID string, now time.Time) (models.Status, error) {
	if f.err != nil {
		return models.Status{}, f.err
	}
	for _, status := range f.newestFirst() {
		if status.UserID == sharerID && status.ActiveAt(now) && status.SharesWith(recipientID) {
			return status, nil
		}
	}
	return models.Status{}, repository.ErrStatusNotFound
}

type fakeFriendStore struct {
	edges map[string]models.Friend
	err   error
}

func newFakeFriendStore() *fakeFriendStore {
	return &fakeFriendStore{edges: make(map[string]models.Friend)}
}

func edgeKey(userID, friendUserID string) string {
	return fmt.Sprintf("%s|%s", userID, friendUserID)
}

func (f *fakeFriendStore) Upsert(_ context.Context, friend models.Friend) error {
	if f.err != nil {
		return f.err
	}
	key := edgeKey(friend.UserID, friend.FriendUserID)
	if existing, ok := f.edges[key]; ok {
		existing.Status = friend.Status
		if friend.AcceptedFromStatusID != nil {
			existing.AcceptedFromStatusID = friend.AcceptedFromStatusID
		}
		f.edges[key] = existing
		return nil
	}
	f.edges[key] = friend
	return nil
}

func (f *fakeFriendStore) Get(_ context.Context, userID, friendUserID string) (models.Friend, error) {
	if f.err != nil {
		return models.Friend{}, f.err
	}
	edge, ok := f.edges[edgeKey(userID, friendUserID)]
	if !ok {
		return models.Friend{}, repository.ErrFriendNotFound
	}
	return edge, nil
}

func (f *fakeFriendStore) SetStatus(_ context.Context, userID, friendUserID string, status models.FriendStatus) error {
	if f.err != nil {
		return f.err
	}
	key := edgeKey(userID, friendUserID)
	edge, ok := f.edges[key]
	if !ok {
		return repository.ErrFriendNotFound
	}
	edge.Status = status
	f.edges[key] = edge
	return nil
}

func (f *fakeFriendStore) ListOutgoing(_ context.Context, userID string) ([]models.Friend, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Friend
	for _, edge := range f.sorted() {
		if edge.UserID == userID {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (f *fakeFriendStore) ListIncoming(_ context.Context, userID string) ([]models.Friend, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Friend
	for _, edge := range f.sorted() {
		if edge.FriendUserID == userID {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (f *fakeFriendStore) EdgesFrom(_ context.Context, userIDs []string, recipientID string) ([]models.Friend, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Friend
	for _, id := range userIDs {
		if edge, ok := f.edges[edgeKey(id, recipientID)]; ok {
			out = append(out, edge)
		}
	}
	return out, nil
}

func (f *fakeFriendStore) sorted() []models.Friend {
	keys := make([]string, 0, len(f.edges))
	for key := range f.edges {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]models.Friend, 0, len(keys))
	for _, key := range keys {
		out = append(out, f.edges[key])
	}
	return out
}

type fakeContactStore struct {
	contacts map[string]models.Contact
	err      error
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: make(map[string]models.Contact)}
}

func (f *fakeContactStore) setPair(userID, otherID string, status models.ContactStatus) {
	f.contacts[edgeKey(userID, otherID)] = models.Contact{
		UserID: userID, ContactUserID: otherID, Status: status,
	}
	f.contacts[edgeKey(otherID, userID)] = models.Contact{
		UserID: otherID, ContactUserID: userID, Status: status,
	}
}

func (f *fakeContactStore) EnsureActivePair(_ context.Context, userID, otherUserID string) error {
	if f.err != nil {
		return f.err
	}
	f.setPair(userID, otherUserID, models.ContactActive)
	return nil
}

func (f *fakeContactStore) ListByUser(_ context.Context, userID string) ([]models.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	keys := make([]string, 0, len(f.contacts))
	for key := range f.contacts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var out []models.Contact
	for _, key := range keys {
		if contact := f.contacts[key]; contact.UserID == userID {
			out = append(out, contact)
		}
	}
	return out, nil
}

type fakeInviteStore struct {
	invites   map[string]models.Invite
	contacts  *fakeContactStore
	redeemErr error
}

func newFakeInviteStore() *fakeInviteStore {
	return &fakeInviteStore{
		invites:  make(map[string]models.Invite),
		contacts: newFakeContactStore(),
	}
}

func (f *fakeInviteStore) Create(_ context.Context, invite models.Invite) error {
	f.invites[invite.Code] = invite
	return nil
}

func (f *fakeInviteStore) GetByCode(_ context.Context, code string) (models.Invite, error) {
	invite, ok := f.invites[code]
	if !ok {
		return models.Invite{}, repository.ErrInviteNotFound
	}
	return invite, nil
}

func (f *fakeInviteStore) Redeem(_ context.Context, code, userID string, now time.Time) (models.Invite, error) {
	if f.redeemErr != nil {
		return models.Invite{}, f.redeemErr
	}
	invite, ok := f.invites[code]
	if !ok || invite.Used() || invite.ExpiredAt(now) {
		return models.Invite{}, repository.ErrInviteConsumed
	}
	invite.UsedByID = &userID
	invite.UsedAt = &now
	f.invites[code] = invite
	f.contacts.setPair(invite.InviterID, userID, models.ContactActive)
	return invite, nil
}

type fakeStatusCache struct {
	entries map[string]models.Status
	hits    int
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: make(map[string]models.Status)}
}

func (f *fakeStatusCache) GetCurrent(_ context.Context, userID string) (models.Status, bool) {
	status, ok := f.entries[userID]
	if ok {
		f.hits++
	}
	return status, ok
}

func (f *fakeStatusCache) SetCurrent(_ context.Context, userID string, status models.Status) {
	f.entries[userID] = status
}

func (f *fakeStatusCache) Invalidate(_ context.Context, userID string) {
	delete(f.entries, userID)
}
