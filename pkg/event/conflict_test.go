package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timedEvent(t *testing.T, id string, date time.Time, start, end string) Event {
	t.Helper()
	return Event{
		ID:        id,
		Title:     "Event " + id,
		Date:      date,
		StartTime: timeOfDay(t, start),
		EndTime:   timeOfDay(t, end),
	}
}

func TestConflicts(t *testing.T) {
	d := day(2025, time.January, 10)

	testCases := []struct {
		name      string
		candidate Event
		existing  []Occurrence
		want      bool
	}{
		{
			name:      "no existing occurrences",
			candidate: timedEvent(t, "new", d, "10:00", "11:00"),
			existing:  []Occurrence{},
			want:      false,
		},
		{
			name:      "partial overlap",
			candidate: timedEvent(t, "new", d, "10:00", "11:00"),
			existing: []Occurrence{
				{Event: timedEvent(t, "a", d, "10:30", "11:30"), InstanceID: "a"},
			},
			want: true,
		},
		{
			name:      "identical span",
			candidate: timedEvent(t, "new", d, "10:00", "11:00"),
			existing: []Occurrence{
				{Event: timedEvent(t, "a", d, "10:00", "11:00"), InstanceID: "a"},
			},
			want: true,
		},
		{
			name:      "candidate contains existing",
			candidate: timedEvent(t, "new", d, "09:00", "12:00"),
			existing: []Occurrence{
				{Event: timedEvent(t, "a", d, "10:00", "11:00"), InstanceID: "a"},
			},
			want: true,
		},
		{
			name:      "back to back is not a conflict",
			candidate: timedEvent(t, "new", d, "11:00", "12:00"),
			existing: []Occurrence{
				{Event: timedEvent(t, "a", d, "10:00", "11:00"), InstanceID: "a"},
			},
			want: false,
		},
		{
			name:      "untimed candidate never conflicts",
			candidate: Event{ID: "new", Title: "All day", Date: d},
			existing: []Occurrence{
				{Event: timedEvent(t, "a", d, "00:00", "23:59"), InstanceID: "a"},
			},
			want: false,
		},
		{
			name:      "untimed existing never conflicts",
			candidate: timedEvent(t, "new", d, "10:00", "11:00"),
			existing: []Occurrence{
				{Event: Event{ID: "a", Title: "All day", Date: d}, InstanceID: "a"},
			},
			want: false,
		},
		{
			name:      "own base occurrence is skipped",
			candidate: timedEvent(t, "evt-1", d, "10:00", "11:00"),
			existing: []Occurrence{
				{Event: timedEvent(t, "evt-1", d, "10:00", "11:00"), InstanceID: "evt-1"},
			},
			want: false,
		},
		{
			name:      "own generated instance is skipped",
			candidate: timedEvent(t, "evt-1", d, "10:00", "11:00"),
			existing: []Occurrence{
				{Event: timedEvent(t, "evt-1", d, "10:00", "11:00"), InstanceID: "evt-1-20250110", ParentID: "evt-1"},
			},
			want: false,
		},
		{
			name:      "occurrence on another day is skipped",
			candidate: timedEvent(t, "new", d, "10:00", "11:00"),
			existing: []Occurrence{
				{Event: timedEvent(t, "a", d.AddDate(0, 0, 1), "10:00", "11:00"), InstanceID: "a"},
			},
			want: false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Conflicts(tc.candidate, tc.existing)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConflicts_Symmetric(t *testing.T) {
	d := day(2025, time.January, 10)
	a := timedEvent(t, "a", d, "10:00", "11:00")
	b := timedEvent(t, "b", d, "10:30", "11:30")

	assert.True(t, Conflicts(a, []Occurrence{{Event: b, InstanceID: "b"}}))
	assert.True(t, Conflicts(b, []Occurrence{{Event: a, InstanceID: "a"}}))
}

func TestConflicts_RecurringInstanceOfAnotherEvent(t *testing.T) {
	d := day(2025, time.January, 10)
	candidate := timedEvent(t, "new", d, "10:00", "11:00")
	recurring := Occurrence{
		Event:      timedEvent(t, "evt-weekly", d, "10:30", "11:30"),
		InstanceID: "evt-weekly-20250110",
		ParentID:   "evt-weekly",
	}

	assert.True(t, Conflicts(candidate, []Occurrence{recurring}),
		"generated instances of other events participate in conflicts")
}
