package dto

import "time"

// AccessWindowRequest overrides the join tolerances for a batch's sessions.
type AccessWindowRequest struct {
	JoinBeforeMin  int `json:"joinBeforeMin" validate:"min=0,max=60"`
	ExpireAfterMin int `json:"expireAfterMin" validate:"min=0,max=60"`
}

// CreateBatchRequest creates a group batch; session occurrences are expanded
// from the recurring pattern and persisted with the batch.
type CreateBatchRequest struct {
	Title           string               `json:"title" validate:"required"`
	RecurringDays   []string             `json:"recurringDays" validate:"required,min=1,dive,weekday"`
	StartDate       string               `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate         string               `json:"endDate" validate:"required,datetime=2006-01-02"`
	ClassStartTime  string               `json:"classStartTime" validate:"required,classtime"`
	ClassEndTime    string               `json:"classEndTime" validate:"required,classtime"`
	SeatCap         int                  `json:"seatCap" validate:"required,min=1"`
	PricePerStudent int                  `json:"pricePerStudent" validate:"required,min=0"`
	AccessWindow    *AccessWindowRequest `json:"accessWindow" validate:"omitempty"`
}

// PreviewBatchRequest expands the recurring pattern without persisting.
type PreviewBatchRequest struct {
	RecurringDays  []string `json:"recurringDays" validate:"required,min=1,dive,weekday"`
	StartDate      string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	ClassStartTime string   `json:"classStartTime" validate:"required,classtime"`
}

// BatchPreviewResponse lists the session start times the pattern expands to.
type BatchPreviewResponse struct {
	Sessions []time.Time `json:"sessions"`
	Count    int         `json:"count"`
}
