package models

import "time"

// Invite is a single-use, time-limited code that links two users as contacts
// when redeemed.
type Invite struct {
	ID        string
	Code      string
	InviterID string
	ExpiresAt time.Time
	UsedByID  *string
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (i Invite) Used() bool {
	return i.UsedByID != nil
}

func (i Invite) ExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
