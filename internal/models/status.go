package models

import "time"

type StatusKind string

const (
	StatusAvailable   StatusKind = "AVAILABLE"
	StatusUnavailable StatusKind = "UNAVAILABLE"
)

type StatusLocation string

const (
	LocationHome       StatusLocation = "HOME"
	LocationGreenspace StatusLocation = "GREENSPACE"
	LocationThirdPlace StatusLocation = "THIRD_PLACE"
)

// Status is a time-boxed availability announcement. Expiry is derived, not
// stored: a status is active exactly while startTime <= now <= endTime.
type Status struct {
	ID         string
	UserID     string
	Status     StatusKind
	Message    string
	Location   StatusLocation
	StartTime  time.Time
	EndTime    time.Time
	SharedWith []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActiveAt reports whether the status window contains now, closed on both
// ends.
func (s Status) ActiveAt(now time.Time) bool {
	return !now.Before(s.StartTime) && !now.After(s.EndTime)
}

// SharesWith reports whether userID is named as a share target.
func (s Status) SharesWith(userID string) bool {
	for _, id := range s.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}
