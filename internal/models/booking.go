package models

import "time"

// BookingStatus tracks the booking lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking links a student to a booked slot. StartTime mirrors the slot's
// start so join-window evaluation needs no join.
type Booking struct {
	ID          string        `db:"id" json:"id"`
	SlotID      string        `db:"slot_id" json:"slot_id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	TutorID     string        `db:"tutor_id" json:"tutor_id"`
	SessionKind string        `db:"session_kind" json:"session_kind"`
	StartTime   time.Time     `db:"start_time" json:"start_time"`
	Status      BookingStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	StudentID string
	TutorID   string
	Status    BookingStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
