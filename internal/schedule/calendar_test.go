package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2025-10-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year)
	assert.Equal(t, time.October, d.Month)
	assert.Equal(t, 3, d.Day)
	assert.Equal(t, "2025-10-03", d.String())
	assert.Equal(t, time.Friday, d.Weekday())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "2025-13-01", "03-10-2025", "2025-10-03T00:00:00Z"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestNavigateRollsOverYears(t *testing.T) {
	dec := NewDate(2025, time.December, 15)
	next := Navigate(dec, 1)
	assert.Equal(t, "2026-01-01", next.String())

	jan := NewDate(2026, time.January, 1)
	prev := Navigate(jan, -1)
	assert.Equal(t, "2025-12-01", prev.String())
}

func TestNavigateRoundTrip(t *testing.T) {
	// Forward one month then back one month lands on the same first-of-month
	// for every month of the year.
	for m := time.January; m <= time.December; m++ {
		cursor := NewDate(2025, m, 1)
		assert.Equal(t, cursor, Navigate(Navigate(cursor, 1), -1), cursor.String())
	}
}

func TestMonthGridCompleteWeeks(t *testing.T) {
	// October 2025 starts on a Wednesday: three leading pad cells, total
	// length a multiple of seven, Sunday first and Saturday last.
	grid := MonthGrid(NewDate(2025, time.October, 1))
	require.NotEmpty(t, grid)
	assert.Zero(t, len(grid)%7)
	assert.Equal(t, time.Sunday, grid[0].Date.Weekday())
	assert.Equal(t, time.Saturday, grid[len(grid)-1].Date.Weekday())

	lead := 0
	for _, cell := range grid {
		if cell.InMonth {
			break
		}
		lead++
	}
	first := NewDate(2025, time.October, 1)
	assert.Equal(t, int(first.Weekday()), lead)

	inMonth := 0
	for _, cell := range grid {
		if cell.InMonth {
			inMonth++
		}
	}
	assert.Equal(t, 31, inMonth)
}

func TestMonthGridPadInvariantAcrossMonths(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		grid := MonthGrid(NewDate(2026, m, 1))
		assert.Zero(t, len(grid)%7, m.String())
		assert.Equal(t, time.Sunday, grid[0].Date.Weekday(), m.String())
		assert.Equal(t, time.Saturday, grid[len(grid)-1].Date.Weekday(), m.String())
	}
}

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection()
	d := NewDate(2025, time.October, 10)

	assert.True(t, sel.Toggle(d))
	assert.True(t, sel.Contains(d))
	assert.False(t, sel.Toggle(d))
	assert.False(t, sel.Contains(d))
	assert.Zero(t, sel.Len())
}

func TestSelectionDatesSortedAndDeduplicated(t *testing.T) {
	sel := NewSelection(
		NewDate(2025, time.October, 20),
		NewDate(2025, time.October, 5),
		NewDate(2025, time.September, 30),
		NewDate(2025, time.October, 5),
	)
	assert.Equal(t, []string{"2025-09-30", "2025-10-05", "2025-10-20"}, sel.Strings())
}

func TestSelectMonthExcludingSundays(t *testing.T) {
	// October 2025 has 31 days and four Sundays (5, 12, 19, 26), leaving 27
	// selectable days.
	sel := NewSelection()
	sel.SelectMonthExcluding(NewDate(2025, time.October, 1), time.Sunday)

	assert.Equal(t, 27, sel.Len())
	for _, d := range sel.Dates() {
		assert.NotEqual(t, time.Sunday, d.Weekday(), d.String())
		assert.Equal(t, time.October, d.Month)
	}
	assert.False(t, sel.Contains(NewDate(2025, time.October, 5)))
	assert.False(t, sel.Contains(NewDate(2025, time.October, 26)))
}

func TestSelectMonthExcludingPreservesOtherMonths(t *testing.T) {
	elsewhere := NewDate(2025, time.September, 15)
	sel := NewSelection(elsewhere)
	sel.SelectMonthExcluding(NewDate(2025, time.October, 1), time.Sunday)

	assert.True(t, sel.Contains(elsewhere))
	assert.Equal(t, 28, sel.Len())
}

func TestSelectionClear(t *testing.T) {
	sel := NewSelection(NewDate(2025, time.October, 1), NewDate(2025, time.October, 2))
	sel.Clear()
	assert.Zero(t, sel.Len())
	assert.Empty(t, sel.Dates())
}

func TestDateAtCombinesTimeOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	d := NewDate(2025, time.October, 3)
	ts := d.At(TimeOfDay{Hour: 18, Minute: 30}, loc)
	assert.Equal(t, time.Date(2025, time.October, 3, 18, 30, 0, 0, loc), ts)
}
