package models

import "time"

type Group struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GroupMember struct {
	ID           string
	GroupID      string
	MemberUserID string
	CreatedAt    time.Time
}
