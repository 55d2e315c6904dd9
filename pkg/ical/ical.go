package ical

import (
	"context"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/kalendo/kalendo/internal/dateutil"
	"github.com/kalendo/kalendo/internal/utils"
	"github.com/kalendo/kalendo/pkg/event"
	"github.com/teambition/rrule-go"
)

// Feed renders the stored base events as an iCalendar document. Recurring
// events are emitted as a single VEVENT with an RRULE, so subscribing
// clients expand instances themselves.
type Feed struct {
	events event.Service
	clock  utils.Clock
}

func NewFeed(events event.Service, clock utils.Clock) *Feed {
	return &Feed{events: events, clock: clock}
}

func (f *Feed) Render(ctx context.Context) (string, error) {
	events, err := f.events.Events(ctx)
	if err != nil {
		return "", fmt.Errorf("could not load events for feed: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(f.clock.Now())
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Color != "" {
			ve.SetColor(e.Color)
		}

		if e.Timed() {
			ve.SetStartAt(e.StartTime.At(e.Date))
			ve.SetEndAt(e.EndTime.At(e.Date))
		} else {
			ve.SetAllDayStartAt(dateutil.StartOfDay(e.Date))
			ve.SetAllDayEndAt(dateutil.NextDay(e.Date))
		}

		if e.Recurrence.IsRecurring() {
			rule, err := ruleString(e.Recurrence)
			if err != nil {
				return "", fmt.Errorf("event %s: %w", e.ID, err)
			}
			ve.AddRrule(rule)
		}
	}

	return cal.Serialize(), nil
}

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// ruleString maps a recurrence rule onto an RFC 5545 RRULE value.
func ruleString(r event.Recurrence) (string, error) {
	option := rrule.ROption{}

	switch r.Type {
	case event.RecurrenceDaily:
		option.Freq = rrule.DAILY
	case event.RecurrenceWeekly:
		option.Freq = rrule.WEEKLY
		for _, day := range r.DaysOfWeek {
			if day < 0 || day > 6 {
				return "", fmt.Errorf("invalid weekday %d in recurrence", day)
			}
			option.Byweekday = append(option.Byweekday, rruleWeekdays[day])
		}
	case event.RecurrenceMonthly:
		option.Freq = rrule.MONTHLY
		option.Bymonthday = []int{r.DayOfMonth}
	case event.RecurrenceCustom:
		interval := r.Interval
		if interval < 1 {
			interval = 1
		}
		option.Interval = interval
		switch r.Unit {
		case event.UnitWeeks:
			option.Freq = rrule.WEEKLY
		case event.UnitMonths:
			option.Freq = rrule.MONTHLY
		default:
			option.Freq = rrule.DAILY
		}
	default:
		return "", fmt.Errorf("recurrence type %q has no RRULE form", r.Type)
	}

	if _, err := rrule.NewRRule(option); err != nil {
		return "", fmt.Errorf("could not build RRULE: %w", err)
	}
	return option.RRuleString(), nil
}
