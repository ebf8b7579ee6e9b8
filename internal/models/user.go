package models

import "time"

type User struct {
	ID             string
	ExternalAuthID string
	PhoneHash      *string
	FirstName      string
	LastName       string
	Email          string
	AvatarURL      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName is the display name used when sorting friend lists.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
