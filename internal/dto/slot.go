package dto

import "time"

// SlotSubmission is one slot in a pending batch, the shape produced by the
// booking front end's slot builder.
type SlotSubmission struct {
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	SlotType  string    `json:"slotType" validate:"required,slottype"`
}

// SubmitSlotsRequest submits a tutor's pending slot batch.
type SubmitSlotsRequest struct {
	Slots []SlotSubmission `json:"slots" validate:"required,min=1,dive"`
}

// BuildSlotRequest derives a slot from a date, time of day and slot type.
type BuildSlotRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,classtime"`
	SlotType string `json:"slotType" validate:"required,slottype"`
}

// BuiltSlotResponse echoes the derived slot interval.
type BuiltSlotResponse struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	SlotType  string    `json:"slotType"`
}
