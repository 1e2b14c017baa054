package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a coded error that knows which HTTP status it maps to. Code is
// stable across releases; Message is free to change.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinel errors. Services Clone these to override the message while
// keeping the code and status.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// Scheduling-specific errors.
	ErrDuplicateSlot   = New("DUPLICATE", http.StatusConflict, "a slot with the same start time and type is already pending")
	ErrIndexOutOfRange = New("INDEX_OUT_OF_RANGE", http.StatusInternalServerError, "pending slot index out of range")
	ErrInvalidRange    = New("INVALID_RANGE", http.StatusBadRequest, "end date precedes start date")
	ErrEmptyPattern    = New("EMPTY_PATTERN", http.StatusBadRequest, "no weekdays selected for the recurring schedule")
	ErrSeatCapReached  = New("SEAT_CAP_REACHED", http.StatusConflict, "batch has no remaining seats")
	ErrSlotUnavailable = New("SLOT_UNAVAILABLE", http.StatusConflict, "slot is no longer open for booking")
)

// FromError normalises any error into an *Error. Unknown errors become a
// wrapped INTERNAL_ERROR so handlers never leak raw driver messages.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies a sentinel error, optionally overriding its message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
