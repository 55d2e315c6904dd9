package dateutil

import (
	"math"
	"time"
)

// DayFormat is the ISO-8601 date layout used across handlers and persistence.
const DayFormat = "2006-01-02"

// StartOfDay returns midnight of t's calendar day, in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// NextDay returns midnight of the day after t.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// DaysBetween returns the number of whole calendar days from a to b
// (negative when b is before a). Both are normalized to midnight first, and
// the result is rounded so that DST transitions do not shift the count.
func DaysBetween(a, b time.Time) int {
	diff := StartOfDay(b).Sub(StartOfDay(a))
	return int(math.Round(diff.Hours() / 24))
}

// MonthsBetween returns the number of calendar months from a to b, counted
// as the difference of year*12+month.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()*12 + int(b.Month())) - (a.Year()*12 + int(a.Month()))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns midnight of the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// StartOfWeek returns midnight of the most recent weekStartsOn on or before t.
func StartOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(weekStartsOn) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// MonthGrid returns the full week rows displayed for the month containing t:
// every calendar day from the week containing the 1st through the week
// containing the last day of the month, split into rows of seven.
func MonthGrid(t time.Time, weekStartsOn time.Weekday) [][]time.Time {
	first := StartOfWeek(StartOfMonth(t), weekStartsOn)
	last := StartOfWeek(EndOfMonth(t), weekStartsOn).AddDate(0, 0, 6)

	var weeks [][]time.Time
	for day := first; !day.After(last); {
		week := make([]time.Time, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, day)
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}
