package models

import "time"

// AvailabilityDay is one calendar date a tutor has marked as available. The
// date is stored timezone-agnostic as a plain "YYYY-MM-DD" string.
type AvailabilityDay struct {
	ID        string    `db:"id" json:"id"`
	TutorID   string    `db:"tutor_id" json:"tutor_id"`
	Date      string    `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
