package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"plaza/api/internal/apperr"
	"plaza/api/internal/models"
)

var testTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newStatusService(store *fakeStatusStore, friends *fakeFriendStore, cache *fakeStatusCache, now time.Time) *StatusService {
	if friends == nil {
		friends = newFakeFriendStore()
	}
	var cacheIface StatusCache
	if cache != nil {
		cacheIface = cache
	}
	svc := NewStatusService(store, friends, cacheIface, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func activeStatus(id, userID string, createdAt time.Time, sharedWith ...string) models.Status {
	return models.Status{
		ID:         id,
		UserID:     userID,
		Status:     models.StatusAvailable,
		Message:    "around",
		Location:   models.LocationHome,
		StartTime:  testTime.Add(-time.Hour),
		EndTime:    testTime.Add(2 * time.Hour),
		SharedWith: sharedWith,
		CreatedAt:  createdAt,
	}
}

func TestSetStatusValidation(t *testing.T) {
	svc := newStatusService(&fakeStatusStore{}, nil, nil, testTime)

	long := make([]byte, maxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		input SetStatusInput
	}{
		{
			name: "message too long",
			input: SetStatusInput{
				Message:   string(long),
				StartTime: testTime,
				EndTime:   testTime.Add(time.Hour),
			},
		},
		{
			name: "end before start",
			input: SetStatusInput{
				StartTime: testTime.Add(time.Hour),
				EndTime:   testTime,
			},
		},
		{
			name: "end equals start",
			input: SetStatusInput{
				StartTime: testTime,
				EndTime:   testTime,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetStatus(context.Background(), "u1", tt.input)
			if apperr.KindOf(err) != apperr.KindInvalidState {
				t.Fatalf("expected invalid state error, got %v", err)
			}
		})
	}
}

func TestSetStatusInsertsWhenNoActive(t *testing.T) {
	store := &fakeStatusStore{}
	svc := newStatusService(store, nil, nil, testTime)

	status, err := svc.SetStatus(context.Background(), "u1", SetStatusInput{
		Status:     models.StatusAvailable,
		Message:    "at the park",
		Location:   models.LocationGreenspace,
		StartTime:  testTime,
		EndTime:    testTime.Add(time.Hour),
		SharedWith: []string{"u2"},
	})
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if status.ID == "" {
		t.Fatal("expected generated id")
	}
	if len(store.statuses) != 1 {
		t.Fatalf("expected 1 row, got %d", len(store.statuses))
	}
}

func TestSetStatusUpdatesActiveInPlace(t *testing.T) {
	store := &fakeStatusStore{statuses: []models.Status{activeStatus("s1", "u1", testTime.Add(-time.Minute))}}
	svc := newStatusService(store, nil, nil, testTime)

	status, err := svc.SetStatus(context.Background(), "u1", SetStatusInput{
		Status:    models.StatusAvailable,
		Message:   "moved to the cafe",
		Location:  models.LocationThirdPlace,
		StartTime: testTime,
		EndTime:   testTime.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if status.ID != "s1" {
		t.Fatalf("expected update in place, got new id %q", status.ID)
	}
	if len(store.statuses) != 1 {
		t.Fatalf("expected 1 row, got %d", len(store.statuses))
	}
	if store.statuses[0].Message != "moved to the cafe" {
		t.Fatalf("row not updated: %q", store.statuses[0].Message)
	}
}

func TestSetStatusInvalidatesCache(t *testing.T) {
	cache := newFakeStatusCache()
	cache.SetCurrent(context.Background(), "u1", activeStatus("stale", "u1", testTime))

	store := &fakeStatusStore{}
	svc := newStatusService(store, nil, cache, testTime)

	if _, err := svc.SetStatus(context.Background(), "u1", SetStatusInput{
		StartTime: testTime,
		EndTime:   testTime.Add(time.Hour),
	}); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, ok := cache.entries["u1"]; ok {
		t.Fatal("cache entry should have been invalidated")
	}
}

func TestCurrentStatusWindow(t *testing.T) {
	status := activeStatus("s1", "u1", testTime)
	store := &fakeStatusStore{statuses: []models.Status{status}}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before window", status.StartTime.Add(-time.Second), false},
		{"at start", status.StartTime, true},
		{"inside window", testTime, true},
		{"at end", status.EndTime, true},
		{"after window", status.EndTime.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStatusService(store, nil, nil, tt.now)
			got := svc.CurrentStatus(context.Background(), "u1")
			if (got != nil) != tt.want {
				t.Fatalf("CurrentStatus at %v: got %v, want active=%v", tt.now, got, tt.want)
			}
		})
	}
}

func TestCurrentStatusPrefersNewest(t *testing.T) {
	store := &fakeStatusStore{statuses: []models.Status{
		activeStatus("old", "u1", testTime.Add(-time.Hour)),
		activeStatus("new", "u1", testTime.Add(-time.Minute)),
	}}
	svc := newStatusService(store, nil, nil, testTime)

	got := svc.CurrentStatus(context.Background(), "u1")
	if got == nil || got.ID != "new" {
		t.Fatalf("expected newest status, got %v", got)
	}
}

func TestCurrentStatusDegradesOnError(t *testing.T) {
	store := &fakeStatusStore{err: errors.New("connection refused")}
	svc := newStatusService(store, nil, nil, testTime)

	if got := svc.CurrentStatus(context.Background(), "u1"); got != nil {
		t.Fatalf("expected nil on store failure, got %v", got)
	}
}

func TestCurrentStatusServedFromCache(t *testing.T) {
	cache := newFakeStatusCache()
	cache.SetCurrent(context.Background(), "u1", activeStatus("cached", "u1", testTime))

	// broken store proves the hit never reaches it
	store := &fakeStatusStore{err: errors.New("down")}
	svc := newStatusService(store, nil, cache, testTime)

	got := svc.CurrentStatus(context.Background(), "u1")
	if got == nil || got.ID != "cached" {
		t.Fatalf("expected cached status, got %v", got)
	}
}

func TestCurrentStatusDropsExpiredCacheEntry(t *testing.T) {
	expired := activeStatus("cached", "u1", testTime)
	expired.EndTime = testTime.Add(-time.Minute)

	cache := newFakeStatusCache()
	cache.SetCurrent(context.Background(), "u1", expired)

	store := &fakeStatusStore{}
	svc := newStatusService(store, nil, cache, testTime)

	if got := svc.CurrentStatus(context.Background(), "u1"); got != nil {
		t.Fatalf("expected nil for expired cache entry, got %v", got)
	}
	if _, ok := cache.entries["u1"]; ok {
		t.Fatal("expired cache entry should have been invalidated")
	}
}

func TestClearStatusReportsCount(t *testing.T) {
	store := &fakeStatusStore{statuses: []models.Status{
		activeStatus("s1", "u1", testTime.Add(-time.Hour)),
		activeStatus("s2", "u1", testTime),
		activeStatus("s3", "u2", testTime),
	}}
	svc := newStatusService(store, nil, nil, testTime)

	count, err := svc.ClearStatus(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ClearStatus: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 deleted, got %d", count)
	}
	if len(store.statuses) != 1 || store.statuses[0].UserID != "u2" {
		t.Fatalf("other users' statuses must survive: %v", store.statuses)
	}
}

func TestFriendStatusesOneStatusPerAuthor(t *testing.T) {
	friends := newFakeFriendStore()
	friends.Upsert(context.Background(), models.Friend{UserID: "u1", FriendUserID: "u2", Status: models.FriendAccepted})

	store := &fakeStatusStore{statuses: []models.Status{
		activeStatus("old", "u2", testTime.Add(-time.Hour)),
		activeStatus("new", "u2", testTime.Add(-time.Minute)),
	}}
	svc := newStatusService(store, friends, nil, testTime)

	feed := svc.FriendStatuses(context.Background(), "u1", false)
	if len(feed) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(feed))
	}
	if feed[0].ID != "new" {
		t.Fatalf("expected newest status per author, got %q", feed[0].ID)
	}
}

func TestFriendStatusesSuppressesExpiringSoon(t *testing.T) {
	friends := newFakeFriendStore()
	friends.Upsert(context.Background(), models.Friend{UserID: "u1", FriendUserID: "u2", Status: models.FriendAccepted})

	ending := activeStatus("ending", "u2", testTime)
	ending.EndTime = testTime.Add(expiringSoonGrace)

	store := &fakeStatusStore{statuses: []models.Status{ending}}
	svc := newStatusService(store, friends, nil, testTime)

	if feed := svc.FriendStatuses(context.Background(), "u1", false); len(feed) != 0 {
		t.Fatalf("status ending inside grace must be suppressed, got %v", feed)
	}

	ending.EndTime = testTime.Add(expiringSoonGrace + time.Second)
	store.statuses = []models.Status{ending}
	if feed := svc.FriendStatuses(context.Background(), "u1", false); len(feed) != 1 {
		t.Fatalf("status ending past grace must appear, got %v", feed)
	}
}

func TestFriendStatusesMutedAuthor(t *testing.T) {
	friends := newFakeFriendStore()
	// u2 shares toward u1; u1 muted that edge
	friends.Upsert(context.Background(), models.Friend{UserID: "u2", FriendUserID: "u1", Status: models.FriendMuted})

	store := &fakeStatusStore{statuses: []models.Status{activeStatus("s1", "u2", testTime)}}
	svc := newStatusService(store, friends, nil, testTime)

	if feed := svc.FriendStatuses(context.Background(), "u1", false); len(feed) != 0 {
		t.Fatalf("muted author must be excluded by default, got %v", feed)
	}
	if feed := svc.FriendStatuses(context.Background(), "u1", true); len(feed) != 1 {
		t.Fatalf("muted author must appear when requested, got %v", feed)
	}
}

func TestFriendStatusesBlockedAuthorAlwaysExcluded(t *testing.T) {
	friends := newFakeFriendStore()
	friends.Upsert(context.Background(), models.Friend{UserID: "u2", FriendUserID: "u1", Status: models.FriendBlocked})

	store := &fakeStatusStore{statuses: []models.Status{activeStatus("s1", "u2", testTime)}}
	svc := newStatusService(store, friends, nil, testTime)

	if feed := svc.FriendStatuses(context.Background(), "u1", true); len(feed) != 0 {
		t.Fatalf("blocked author must never appear, got %v", feed)
	}
}

func TestFriendStatusesDegradesToEmpty(t *testing.T) {
	friends := newFakeFriendStore()
	friends.err = errors.New("connection refused")

	svc := newStatusService(&fakeStatusStore{}, friends, nil, testTime)

	feed := svc.FriendStatuses(context.Background(), "u1", false)
	if feed == nil || len(feed) != 0 {
		t.Fatalf("expected empty non-nil feed, got %v", feed)
	}
}
