package dto

// UpdateAvailabilityRequest replaces a tutor's availability selection with
// the given set of dates.
type UpdateAvailabilityRequest struct {
	Dates []string `json:"dates" validate:"required,dive,datetime=2006-01-02"`
}

// MonthSelectRequest bulk-selects a month's dates minus one weekday.
type MonthSelectRequest struct {
	Month           string `json:"month" validate:"required,datetime=2006-01-02"`
	ExcludedWeekday string `json:"excludedWeekday" validate:"required,weekday"`
}

// AvailabilityResponse returns a tutor's availability selection sorted
// ascending with duplicates removed.
type AvailabilityResponse struct {
	TutorID string   `json:"tutorId"`
	Dates   []string `json:"dates"`
}
