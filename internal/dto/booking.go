package dto

import "time"

// CreateBookingRequest books an open slot for the authenticated student.
type CreateBookingRequest struct {
	SlotID string `json:"slotId" validate:"required,uuid4"`
}

// JoinWindowResponse reports whether the session is joinable right now. The
// client re-polls on PollSeconds while neither flag is set.
type JoinWindowResponse struct {
	CanJoin     bool      `json:"canJoin"`
	IsExpired   bool      `json:"isExpired"`
	OpensAt     time.Time `json:"opensAt"`
	ClosesAt    time.Time `json:"closesAt"`
	PollSeconds int       `json:"pollSeconds"`
}
