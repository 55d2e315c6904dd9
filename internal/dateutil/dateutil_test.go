package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartAndEndOfDay(t *testing.T) {
	moment := time.Date(2025, time.March, 10, 15, 42, 7, 123, time.Local)

	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local), StartOfDay(moment))
	assert.Equal(t, time.Date(2025, time.March, 10, 23, 59, 59, 999999999, time.Local), EndOfDay(moment))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, time.March, 10, 1, 0, 0, 0, time.Local)
	evening := time.Date(2025, time.March, 10, 23, 0, 0, 0, time.Local)
	nextDay := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.Local)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(evening, nextDay))
}

func TestDaysBetween(t *testing.T) {
	testCases := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "same day",
			a:    time.Date(2025, time.March, 10, 1, 0, 0, 0, time.Local),
			b:    time.Date(2025, time.March, 10, 23, 0, 0, 0, time.Local),
			want: 0,
		},
		{
			name: "forward",
			a:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local),
			b:    time.Date(2025, time.March, 17, 0, 0, 0, 0, time.Local),
			want: 7,
		},
		{
			name: "backward",
			a:    time.Date(2025, time.March, 17, 0, 0, 0, 0, time.Local),
			b:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local),
			want: -7,
		},
		{
			name: "across a year boundary",
			a:    time.Date(2024, time.December, 30, 0, 0, 0, 0, time.Local),
			b:    time.Date(2025, time.January, 2, 0, 0, 0, 0, time.Local),
			want: 3,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DaysBetween(tc.a, tc.b))
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	jan := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.Local)
	mar := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)
	prevDec := time.Date(2024, time.December, 15, 0, 0, 0, 0, time.Local)

	assert.Equal(t, 2, MonthsBetween(jan, mar), "day of month does not matter")
	assert.Equal(t, 1, MonthsBetween(prevDec, jan))
	assert.Equal(t, -1, MonthsBetween(jan, prevDec))
}

func TestStartOfWeek(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	wednesday := time.Date(2025, time.March, 12, 15, 0, 0, 0, time.Local)

	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.Local), StartOfWeek(wednesday, time.Sunday))
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local), StartOfWeek(wednesday, time.Monday))

	// A day that already is the week start maps to its own midnight.
	sunday := time.Date(2025, time.March, 9, 12, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.Local), StartOfWeek(sunday, time.Sunday))
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, 28, EndOfMonth(time.Date(2025, time.February, 10, 0, 0, 0, 0, time.Local)).Day())
	assert.Equal(t, 29, EndOfMonth(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.Local)).Day())
	assert.Equal(t, 31, EndOfMonth(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local)).Day())
}

func TestMonthGrid(t *testing.T) {
	grid := MonthGrid(time.Date(2025, time.February, 14, 0, 0, 0, 0, time.Local), time.Sunday)

	// February 2025: first week starts Jan 26, last ends Mar 1.
	assert.Len(t, grid, 5)
	for _, week := range grid {
		assert.Len(t, week, 7)
	}
	assert.Equal(t, time.Date(2025, time.January, 26, 0, 0, 0, 0, time.Local), grid[0][0])
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local), grid[4][6])
}

func TestMonthGrid_MondayStart(t *testing.T) {
	grid := MonthGrid(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.Local), time.Monday)

	// September 2025 starts on a Monday and has exactly 30 days: five rows.
	assert.Len(t, grid, 5)
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.Local), grid[0][0])
	assert.Equal(t, time.Date(2025, time.October, 5, 0, 0, 0, 0, time.Local), grid[4][6])
}
