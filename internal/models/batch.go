package models

import "time"

// BatchStatus tracks a group batch's lifecycle.
type BatchStatus string

const (
	BatchStatusDraft     BatchStatus = "DRAFT"
	BatchStatusPublished BatchStatus = "PUBLISHED"
	BatchStatusArchived  BatchStatus = "ARCHIVED"
)

// Batch is a tutor's recurring group course: a weekday pattern over a date
// range with a fixed daily class time and a per-batch join access window.
type Batch struct {
	ID              string      `db:"id" json:"id"`
	TutorID         string      `db:"tutor_id" json:"tutor_id"`
	Title           string      `db:"title" json:"title"`
	RecurringDays   string      `db:"recurring_days" json:"recurring_days"`
	StartDate       string      `db:"start_date" json:"start_date"`
	EndDate         string      `db:"end_date" json:"end_date"`
	ClassStartTime  string      `db:"class_start_time" json:"class_start_time"`
	ClassEndTime    string      `db:"class_end_time" json:"class_end_time"`
	SeatCap         int         `db:"seat_cap" json:"seat_cap"`
	PricePerStudent int         `db:"price_per_student" json:"price_per_student"`
	JoinBeforeMin   int         `db:"join_before_min" json:"join_before_min"`
	ExpireAfterMin  int         `db:"expire_after_min" json:"expire_after_min"`
	Status          BatchStatus `db:"status" json:"status"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// BatchSession is one concrete occurrence generated from the batch's
// recurring schedule.
type BatchSession struct {
	ID        string    `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BatchEnrollment joins a student to a batch; enrollment count is bounded by
// the batch's seat cap.
type BatchEnrollment struct {
	ID        string    `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BatchFilter narrows batch listings.
type BatchFilter struct {
	TutorID  string
	Status   BatchStatus
	Page     int
	PageSize int
}
