package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Date is a calendar day with no time-of-day component. The canonical wire
// representation is an ISO "YYYY-MM-DD" string.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a normalised Date. Out-of-range components roll over the
// same way time.Date rolls them over.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String renders the canonical ISO form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Weekday returns the day of week for the date.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// At combines the date with a time of day in the given location.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, 0, 0, loc)
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return NewDate(d.Year, d.Month, d.Day+1)
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d falls strictly after other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// DaysInMonth returns the number of days in the date's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Navigate returns the first of the month deltaMonths away from the cursor's
// month. Year boundaries roll over, so December plus one month lands on
// January of the next year.
func Navigate(cursor Date, deltaMonths int) Date {
	return NewDate(cursor.Year, cursor.Month+time.Month(deltaMonths), 1)
}

// GridCell is one cell of a rendered month grid.
type GridCell struct {
	Date    Date
	InMonth bool
}

// MonthGrid lays out the cursor's month as complete weeks: the first cell is
// always a Sunday and the last a Saturday, padding with out-of-month days as
// needed. The leading pad count equals the weekday index of the 1st.
func MonthGrid(cursor Date) []GridCell {
	first := NewDate(cursor.Year, cursor.Month, 1)
	lead := int(first.Weekday())
	days := first.DaysInMonth()

	cells := make([]GridCell, 0, 42)
	for i := -lead; i < days; i++ {
		d := NewDate(cursor.Year, cursor.Month, 1+i)
		cells = append(cells, GridCell{Date: d, InMonth: i >= 0})
	}
	for len(cells)%7 != 0 {
		next := cells[len(cells)-1].Date.Next()
		cells = append(cells, GridCell{Date: next, InMonth: false})
	}
	return cells
}

// Selection is a deduplicated set of calendar dates, typically a tutor's
// available days. The zero value is not usable; construct with NewSelection.
type Selection struct {
	dates map[Date]struct{}
}

// NewSelection builds a selection seeded with the given dates.
func NewSelection(dates ...Date) *Selection {
	s := &Selection{dates: make(map[Date]struct{}, len(dates))}
	for _, d := range dates {
		s.dates[d] = struct{}{}
	}
	return s
}

// Toggle adds the date when absent and removes it when present. It reports
// whether the date is selected after the call.
func (s *Selection) Toggle(d Date) bool {
	if _, ok := s.dates[d]; ok {
		delete(s.dates, d)
		return false
	}
	s.dates[d] = struct{}{}
	return true
}

// Contains reports membership.
func (s *Selection) Contains(d Date) bool {
	_, ok := s.dates[d]
	return ok
}

// Len returns the number of selected dates.
func (s *Selection) Len() int {
	return len(s.dates)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.dates = make(map[Date]struct{})
}

// SelectMonthExcluding unions every day of the cursor's month whose weekday
// differs from excluded into the selection. Dates already selected in other
// months are left untouched.
func (s *Selection) SelectMonthExcluding(cursor Date, excluded time.Weekday) {
	first := NewDate(cursor.Year, cursor.Month, 1)
	for day := 1; day <= first.DaysInMonth(); day++ {
		d := NewDate(cursor.Year, cursor.Month, day)
		if d.Weekday() == excluded {
			continue
		}
		s.dates[d] = struct{}{}
	}
}

// Dates returns the selection sorted ascending.
func (s *Selection) Dates() []Date {
	out := make([]Date, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the sorted selection in ISO form, the shape exchanged with
// the availability endpoints.
func (s *Selection) Strings() []string {
	dates := s.Dates()
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}
