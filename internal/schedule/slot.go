package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors surfaced by the pending-slot operations. Callers map these
// onto transport-level error codes.
var (
	ErrDuplicateSlot   = errors.New("slot with the same start time and kind already pending")
	ErrIndexOutOfRange = errors.New("pending slot index out of range")
	ErrUnknownSlotKind = errors.New("unknown slot kind")
)

// SlotKind distinguishes the bookable slot flavours.
type SlotKind string

const (
	SlotDemo    SlotKind = "demo"
	SlotRegular SlotKind = "regular"
)

// Valid reports whether the kind is one of the known values.
func (k SlotKind) Valid() bool {
	return k == SlotDemo || k == SlotRegular
}

// Duration returns the fixed slot length for the kind: 15 minutes for demo
// slots, 30 for regular ones.
func (k SlotKind) Duration() time.Duration {
	if k == SlotDemo {
		return 15 * time.Minute
	}
	return 30 * time.Minute
}

// Slot is a concrete bookable interval of fixed duration.
type Slot struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Kind      SlotKind  `json:"slotType"`
}

// BuildSlot combines a date and time of day into a slot of the kind's fixed
// duration.
func BuildSlot(date Date, tod TimeOfDay, kind SlotKind, loc *time.Location) (Slot, error) {
	if !kind.Valid() {
		return Slot{}, fmt.Errorf("%w: %q", ErrUnknownSlotKind, kind)
	}
	start := date.At(tod, loc)
	return Slot{StartTime: start, EndTime: start.Add(kind.Duration()), Kind: kind}, nil
}

// AddSlot appends the candidate to the pending list unless a slot with the
// same start time and kind is already present. A demo and a regular slot may
// legally share a start time.
func AddSlot(pending []Slot, candidate Slot) ([]Slot, error) {
	for _, s := range pending {
		if s.Kind == candidate.Kind && s.StartTime.Equal(candidate.StartTime) {
			return pending, ErrDuplicateSlot
		}
	}
	out := make([]Slot, len(pending), len(pending)+1)
	copy(out, pending)
	return append(out, candidate), nil
}

// RemoveSlot drops the slot at the given position. Out-of-range indices are a
// programmer error and rejected explicitly rather than ignored.
func RemoveSlot(pending []Slot, index int) ([]Slot, error) {
	if index < 0 || index >= len(pending) {
		return pending, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(pending))
	}
	out := make([]Slot, 0, len(pending)-1)
	out = append(out, pending[:index]...)
	return append(out, pending[index+1:]...), nil
}
