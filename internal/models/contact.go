package models

import "time"

type ContactStatus string

const (
	ContactActive  ContactStatus = "ACTIVE"
	ContactBlocked ContactStatus = "BLOCKED"
)

// Contact is the legacy mutual-acquaintance record. Unlike Friend it is
// always created in bidirectional pairs and knows only ACTIVE and BLOCKED.
type Contact struct {
	ID            string
	UserID        string
	ContactUserID string
	Status        ContactStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AppContact is one row of a user's uploaded address book.
type AppContact struct {
	ID        string
	UserID    string
	Name      string
	Phone     string
	PhoneHash string
	CreatedAt time.Time
	UpdatedAt time.Time
}
