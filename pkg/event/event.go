package event

import (
	"fmt"
	"time"
)

// RecurrenceType identifies how an event repeats. The set is closed; anything
// outside of it is treated as non-recurring when expanding.
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// IntervalUnit is the step unit of a custom recurrence.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
)

// Recurrence is the repetition rule of an event. Only the fields belonging to
// the active Type are meaningful: DaysOfWeek for weekly, DayOfMonth for
// monthly, Interval and Unit for custom.
type Recurrence struct {
	Type       RecurrenceType
	DaysOfWeek []time.Weekday
	DayOfMonth int
	Interval   int
	Unit       IntervalUnit
}

// IsRecurring reports whether the rule generates instances beyond the anchor
// date. Unrecognized types count as non-recurring.
func (r Recurrence) IsRecurring() bool {
	switch r.Type {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
		return true
	}
	return false
}

// Event is a stored base event. Date is the anchor date of the recurrence
// pattern, normalized to local midnight; time of day lives in StartTime and
// EndTime, which are either both set or both nil.
type Event struct {
	ID          string
	Title       string
	Date        time.Time
	StartTime   *TimeOfDay
	EndTime     *TimeOfDay
	Description string
	Color       string
	Recurrence  Recurrence
}

// Timed reports whether the event carries a start/end time pair. Untimed
// events never participate in conflict detection.
func (e Event) Timed() bool {
	return e.StartTime != nil && e.EndTime != nil
}

// Occurrence is one concrete dated instance derived from a base event. The
// embedded Event carries the base fields with Date replaced by the concrete
// day. Occurrences are recomputed on every query and never persisted.
//
// InstanceID is unique per (event, day) and doubles as the rendering key.
// ParentID is set only on instances generated by a recurrence rule; the
// literal base occurrence keeps it empty and uses the event ID as InstanceID.
type Occurrence struct {
	Event
	InstanceID string
	ParentID   string
}

// TimeOfDay is an immutable wall-clock HH:MM value without date or zone.
type TimeOfDay struct {
	hour   int
	minute int
}

// NewTimeOfDay validates hour and minute and returns the value.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &hour, &minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return NewTimeOfDay(hour, minute)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Minutes returns the minute of day, for ordering.
func (t TimeOfDay) Minutes() int {
	return t.hour*60 + t.minute
}

// At combines the wall-clock time with day's calendar date into an instant in
// day's location.
func (t TimeOfDay) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.hour, t.minute, 0, 0, day.Location())
}
