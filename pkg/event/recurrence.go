package event

import (
	"slices"
	"sort"
	"time"

	"github.com/kalendo/kalendo/internal/dateutil"
)

const instanceDayFormat = "20060102"

// Expand generates the concrete occurrences of e intersecting the inclusive
// range [rangeStart, rangeEnd]. Bounds are normalized to whole-day limits
// before use. The result is deterministic for identical inputs: deduplicated
// by instance ID, sorted by date, then start time (untimed first), with ties
// keeping generation order.
//
// The walk visits every day from max(anchor, rangeStart) to rangeEnd and
// evaluates the rule's predicate per day. That makes the loop bounded by the
// range length: a rule that can never match (empty weekday set, day of month
// the range never reaches) yields an empty result rather than looping.
func Expand(e Event, rangeStart, rangeEnd time.Time) []Occurrence {
	from := dateutil.StartOfDay(rangeStart)
	to := dateutil.EndOfDay(rangeEnd)
	anchor := dateutil.StartOfDay(e.Date)

	occurrences := make([]Occurrence, 0, 4)
	if anchor.After(to) {
		return occurrences
	}

	if !e.Recurrence.IsRecurring() {
		if !anchor.Before(from) {
			occ := Occurrence{Event: e, InstanceID: e.ID}
			occ.Date = anchor
			occurrences = append(occurrences, occ)
		}
		return occurrences
	}

	day := anchor
	if day.Before(from) {
		day = from
	}
	for !day.After(to) {
		if matchesRule(e.Recurrence, anchor, day) {
			occ := Occurrence{
				Event:      e,
				InstanceID: e.ID + "-" + day.Format(instanceDayFormat),
				ParentID:   e.ID,
			}
			occ.Date = day
			occurrences = append(occurrences, occ)
		}
		day = day.AddDate(0, 0, 1)
	}

	return sortOccurrences(dedupeOccurrences(occurrences))
}

func matchesRule(r Recurrence, anchor, day time.Time) bool {
	switch r.Type {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return slices.Contains(r.DaysOfWeek, day.Weekday())
	case RecurrenceMonthly:
		return day.Day() == r.DayOfMonth
	case RecurrenceCustom:
		return matchesCustomRule(r, anchor, day)
	default:
		return false
	}
}

func matchesCustomRule(r Recurrence, anchor, day time.Time) bool {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	switch r.Unit {
	case UnitWeeks:
		if day.Weekday() != anchor.Weekday() {
			return false
		}
		return (dateutil.DaysBetween(anchor, day)/7)%interval == 0
	case UnitMonths:
		if day.Day() != anchor.Day() {
			return false
		}
		return dateutil.MonthsBetween(anchor, day)%interval == 0
	default:
		return dateutil.DaysBetween(anchor, day)%interval == 0
	}
}

// dedupeOccurrences drops entries with an already-seen instance ID, keeping
// the first and preserving order.
func dedupeOccurrences(occurrences []Occurrence) []Occurrence {
	seen := make(map[string]struct{}, len(occurrences))
	result := make([]Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if _, ok := seen[occ.InstanceID]; ok {
			continue
		}
		seen[occ.InstanceID] = struct{}{}
		result = append(result, occ)
	}
	return result
}

// sortOccurrences orders by date ascending, then start time ascending with
// untimed entries first. The sort is stable: equal keys keep their incoming
// order, which is part of the contract.
func sortOccurrences(occurrences []Occurrence) []Occurrence {
	sort.SliceStable(occurrences, func(i, j int) bool {
		di, dj := dateutil.StartOfDay(occurrences[i].Date), dateutil.StartOfDay(occurrences[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return startMinutes(occurrences[i].Event) < startMinutes(occurrences[j].Event)
	})
	return occurrences
}

func startMinutes(e Event) int {
	if e.StartTime == nil {
		return -1
	}
	return e.StartTime.Minutes()
}
