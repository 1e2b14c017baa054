package models

import "time"

// SlotStatus tracks a slot's booking lifecycle.
type SlotStatus string

const (
	SlotStatusOpen   SlotStatus = "OPEN"
	SlotStatusBooked SlotStatus = "BOOKED"
)

// Slot is a tutor's bookable time interval persisted in the slots table.
// EndTime is always StartTime plus the fixed duration of the slot type.
type Slot struct {
	ID        string     `db:"id" json:"id"`
	TutorID   string     `db:"tutor_id" json:"tutor_id"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   time.Time  `db:"end_time" json:"end_time"`
	SlotType  string     `db:"slot_type" json:"slot_type"`
	Status    SlotStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// SlotFilter narrows slot listings.
type SlotFilter struct {
	TutorID  string
	SlotType string
	Status   SlotStatus
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
