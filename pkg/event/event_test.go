package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeOfDay(t *testing.T) {
	testCases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "09:30", want: "09:30"},
		{input: "00:00", want: "00:00"},
		{input: "23:59", want: "23:59"},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestTimeOfDay_At(t *testing.T) {
	tod, err := NewTimeOfDay(14, 30)
	assert.NoError(t, err)

	d := time.Date(2025, time.March, 10, 8, 15, 0, 0, time.Local)
	assert.Equal(t, time.Date(2025, time.March, 10, 14, 30, 0, 0, time.Local), tod.At(d))
}

func TestTimeOfDay_Minutes(t *testing.T) {
	tod, err := NewTimeOfDay(14, 30)
	assert.NoError(t, err)
	assert.Equal(t, 870, tod.Minutes())
}

func TestEvent_Timed(t *testing.T) {
	start, _ := NewTimeOfDay(10, 0)
	end, _ := NewTimeOfDay(11, 0)

	assert.True(t, Event{StartTime: &start, EndTime: &end}.Timed())
	assert.False(t, Event{}.Timed())
	assert.False(t, Event{StartTime: &start}.Timed())
}

func TestRecurrence_IsRecurring(t *testing.T) {
	assert.False(t, Recurrence{Type: RecurrenceNone}.IsRecurring())
	assert.False(t, Recurrence{}.IsRecurring())
	assert.False(t, Recurrence{Type: "yearly"}.IsRecurring(), "unknown types count as non-recurring")
	assert.True(t, Recurrence{Type: RecurrenceDaily}.IsRecurring())
	assert.True(t, Recurrence{Type: RecurrenceWeekly}.IsRecurring())
	assert.True(t, Recurrence{Type: RecurrenceMonthly}.IsRecurring())
	assert.True(t, Recurrence{Type: RecurrenceCustom}.IsRecurring())
}
