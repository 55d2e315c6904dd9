package event

import (
	"context"
	"testing"
	"time"

	"github.com/kalendo/kalendo/internal/bus"
	"github.com/kalendo/kalendo/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func setupServiceTest(t *testing.T) (*ServiceImpl, *storage.MemoryStore, context.Context) {
	t.Helper()
	store := storage.NewMemoryStore()
	ctx := context.Background()
	service := NewService(ctx, store, nil)
	return service, store, ctx
}

func TestService_Add(t *testing.T) {
	service, _, ctx := setupServiceTest(t)

	added, err := service.Add(ctx, Event{
		Title:     "Dentist",
		Date:      time.Date(2025, time.March, 10, 15, 30, 0, 0, time.Local),
		StartTime: timeOfDay(t, "10:00"),
		EndTime:   timeOfDay(t, "11:00"),
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, added.ID, "added event gets a generated id")
	assert.Equal(t, day(2025, time.March, 10), added.Date, "anchor date is normalized to midnight")

	events, err := service.Events(ctx)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, added.ID, events[0].ID)
}

func TestService_Edit(t *testing.T) {
	service, _, ctx := setupServiceTest(t)

	added, err := service.Add(ctx, Event{Title: "Dentist", Date: day(2025, time.March, 10)})
	assert.NoError(t, err)

	changed := *added
	changed.Title = "Dentist (rescheduled)"
	changed.Date = day(2025, time.March, 12)
	err = service.Edit(ctx, changed)
	assert.NoError(t, err)

	events, err := service.Events(ctx)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "Dentist (rescheduled)", events[0].Title)
	assert.Equal(t, day(2025, time.March, 12), events[0].Date)
}

func TestService_EditUnknownIdIsNoOp(t *testing.T) {
	service, _, ctx := setupServiceTest(t)

	added, err := service.Add(ctx, Event{Title: "Dentist", Date: day(2025, time.March, 10)})
	assert.NoError(t, err)

	err = service.Edit(ctx, Event{ID: "does-not-exist", Title: "Ghost", Date: day(2025, time.March, 10)})
	assert.NoError(t, err)

	events, err := service.Events(ctx)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, added.ID, events[0].ID)
	assert.Equal(t, "Dentist", events[0].Title, "stored event stays untouched")
}

func TestService_Delete(t *testing.T) {
	service, _, ctx := setupServiceTest(t)

	added, err := service.Add(ctx, Event{Title: "Dentist", Date: day(2025, time.March, 10)})
	assert.NoError(t, err)

	err = service.Delete(ctx, added.ID)
	assert.NoError(t, err)

	events, err := service.Events(ctx)
	assert.NoError(t, err)
	assert.Empty(t, events)

	// Deleting again is a no-op, not an error.
	err = service.Delete(ctx, added.ID)
	assert.NoError(t, err)
}

func TestService_PersistenceRoundTrip(t *testing.T) {
	service, store, ctx := setupServiceTest(t)

	_, err := service.Add(ctx, Event{
		Title:     "Gym",
		Date:      day(2025, time.January, 6),
		StartTime: timeOfDay(t, "18:00"),
		EndTime:   timeOfDay(t, "19:30"),
		Color:     "#ff0000",
		Recurrence: Recurrence{
			Type:       RecurrenceWeekly,
			DaysOfWeek: []time.Weekday{time.Monday, time.Thursday},
		},
	})
	assert.NoError(t, err)
	_, err = service.Add(ctx, Event{Title: "Holiday", Date: day(2025, time.July, 1)})
	assert.NoError(t, err)

	// A fresh service over the same store must see the same events.
	reloaded := NewService(ctx, store, nil)
	events, err := reloaded.Events(ctx)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "Gym", events[0].Title)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, events[0].Recurrence.DaysOfWeek)
	assert.Equal(t, "18:00", events[0].StartTime.String())
	assert.Equal(t, "19:30", events[0].EndTime.String())
	assert.Nil(t, events[1].StartTime)
}

func TestService_CorruptBlobStartsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	err := store.Set(ctx, "calendar/events", "this is not json")
	assert.NoError(t, err)

	service := NewService(ctx, store, nil)

	events, err := service.Events(ctx)
	assert.NoError(t, err)
	assert.Empty(t, events, "unreadable blob starts the calendar empty")
}

func TestService_OccurrencesForDay(t *testing.T) {
	service, _, ctx := setupServiceTest(t)

	// 2025-01-06 is a Monday.
	_, err := service.Add(ctx, Event{
		Title:     "Gym",
		Date:      day(2025, time.January, 6),
		StartTime: timeOfDay(t, "18:00"),
		EndTime:   timeOfDay(t, "19:00"),
		Recurrence: Recurrence{
			Type:       RecurrenceWeekly,
			DaysOfWeek: []time.Weekday{time.Monday},
		},
	})
	assert.NoError(t, err)
	_, err = service.Add(ctx, Event{Title: "One-off", Date: day(2025, time.January, 13)})
	assert.NoError(t, err)
	_, err = service.Add(ctx, Event{Title: "Elsewhere", Date: day(2025, time.February, 1)})
	assert.NoError(t, err)

	occurrences, err := service.OccurrencesForDay(ctx, day(2025, time.January, 13))

	assert.NoError(t, err)
	assert.Len(t, occurrences, 2)
	// Untimed entries sort before timed ones on the same day.
	assert.Equal(t, "One-off", occurrences[0].Title)
	assert.Equal(t, "Gym", occurrences[1].Title)
	assert.Equal(t, occurrences[1].ParentID+"-20250113", occurrences[1].InstanceID)
}

func TestService_OccurrencesForRange(t *testing.T) {
	service, _, ctx := setupServiceTest(t)

	_, err := service.Add(ctx, Event{
		Title:      "Standup",
		Date:       day(2025, time.January, 1),
		StartTime:  timeOfDay(t, "09:00"),
		EndTime:    timeOfDay(t, "09:15"),
		Recurrence: Recurrence{Type: RecurrenceDaily},
	})
	assert.NoError(t, err)
	_, err = service.Add(ctx, Event{Title: "Trip", Date: day(2025, time.January, 6)})
	assert.NoError(t, err)

	occurrences, err := service.OccurrencesForRange(ctx, day(2025, time.January, 5), day(2025, time.January, 7))

	assert.NoError(t, err)
	assert.Len(t, occurrences, 4)
	titles := make([]string, 0, len(occurrences))
	for _, occ := range occurrences {
		titles = append(titles, occ.Title)
	}
	// Jan 5 standup, then Jan 6 trip (untimed first) and standup, then Jan 7.
	assert.Equal(t, []string{"Standup", "Trip", "Standup", "Standup"}, titles)
}

func TestService_PublishesMutations(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	b := bus.New()

	var published []bus.EventType
	for _, eventType := range []bus.EventType{bus.CalendarEventCreated, bus.CalendarEventUpdated, bus.CalendarEventDeleted} {
		b.Subscribe(eventType, func(e bus.Event) error {
			published = append(published, e.Type)
			return nil
		})
	}

	service := NewService(ctx, store, b)
	added, err := service.Add(ctx, Event{Title: "Dentist", Date: day(2025, time.March, 10)})
	assert.NoError(t, err)
	assert.NoError(t, service.Edit(ctx, *added))
	assert.NoError(t, service.Delete(ctx, added.ID))

	assert.Equal(t, []bus.EventType{
		bus.CalendarEventCreated,
		bus.CalendarEventUpdated,
		bus.CalendarEventDeleted,
	}, published)
}
