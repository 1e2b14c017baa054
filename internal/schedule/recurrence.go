package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors for recurring schedule expansion. An empty weekday set is
// rejected outright rather than silently yielding zero sessions, so a tutor
// sees a validation message before submitting a batch.
var (
	ErrInvalidRange = errors.New("schedule end date precedes start date")
	ErrEmptyPattern = errors.New("schedule has no weekdays selected")
)

// weekdayAbbrevs maps the wire form ("Mon".."Sun") onto time.Weekday.
var weekdayAbbrevs = map[string]time.Weekday{
	"Sun": time.Sunday,
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
}

// ParseWeekdays converts weekday abbreviations into a deduplicated weekday
// set.
func ParseWeekdays(abbrevs []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, len(abbrevs))
	out := make([]time.Weekday, 0, len(abbrevs))
	for _, a := range abbrevs {
		wd, ok := weekdayAbbrevs[a]
		if !ok {
			return nil, fmt.Errorf("unknown weekday abbreviation %q", a)
		}
		if seen[wd] {
			continue
		}
		seen[wd] = true
		out = append(out, wd)
	}
	return out, nil
}

// FormatWeekday renders a weekday in its wire abbreviation.
func FormatWeekday(wd time.Weekday) string {
	return wd.String()[:3]
}

// RecurringSchedule is a weekday pattern over an inclusive date range with a
// fixed daily class time.
type RecurringSchedule struct {
	Weekdays   []time.Weekday
	StartDate  Date
	EndDate    Date
	DailyStart TimeOfDay
}

// Expand enumerates the concrete session start times: every date in
// [StartDate, EndDate] whose weekday is in the pattern, combined with the
// daily start time in the given location. Expansion is deterministic and has
// no side effects, so callers may re-run it for previews and for generating
// session records.
func (s RecurringSchedule) Expand(loc *time.Location) ([]time.Time, error) {
	if s.EndDate.Before(s.StartDate) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, s.StartDate, s.EndDate)
	}
	if len(s.Weekdays) == 0 {
		return nil, ErrEmptyPattern
	}

	wanted := make(map[time.Weekday]bool, len(s.Weekdays))
	for _, wd := range s.Weekdays {
		wanted[wd] = true
	}

	var out []time.Time
	for d := s.StartDate; !d.After(s.EndDate); d = d.Next() {
		if wanted[d.Weekday()] {
			out = append(out, d.At(s.DailyStart, loc))
		}
	}
	return out, nil
}
