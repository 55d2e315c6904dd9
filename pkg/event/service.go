package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kalendo/kalendo/internal/bus"
	"github.com/kalendo/kalendo/internal/dateutil"
	"github.com/kalendo/kalendo/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// storageKey is the fixed blob key the full event list is persisted under.
const storageKey = "calendar/events"

// Service is the authoritative event store. Mutations persist the full list
// to the blob store; occurrence views are re-derived from scratch on every
// query.
type Service interface {
	Add(ctx context.Context, draft Event) (*Event, error)
	// Edit replaces the stored event matching event.ID. An unknown ID is a
	// no-op; callers are expected to pass a valid one.
	Edit(ctx context.Context, event Event) error
	Delete(ctx context.Context, id string) error
	Events(ctx context.Context) ([]Event, error)
	OccurrencesForDay(ctx context.Context, day time.Time) ([]Occurrence, error)
	OccurrencesForRange(ctx context.Context, from, to time.Time) ([]Occurrence, error)
}

type ServiceImpl struct {
	// mu serializes mutations together with their persistence write; the
	// persist-after-mutate pair must not interleave across callers.
	mu     sync.Mutex
	blobs  storage.BlobStore
	bus    *bus.Bus
	events []Event
}

// NewService loads the stored event list and returns the store. A missing or
// unreadable blob starts the calendar empty; it is logged, never fatal.
func NewService(ctx context.Context, blobs storage.BlobStore, b *bus.Bus) *ServiceImpl {
	s := &ServiceImpl{blobs: blobs, bus: b}

	raw, found, err := blobs.Get(ctx, storageKey)
	if err != nil {
		log.Errorf("could not load stored events, starting empty: %v", err)
		return s
	}
	if !found {
		log.Debug("no stored events found, starting empty")
		return s
	}
	events, err := decodeEvents(raw)
	if err != nil {
		log.Errorf("stored events are unreadable, starting empty: %v", err)
		return s
	}
	s.events = events
	log.Infof("loaded %d stored events", len(events))
	return s
}

func (s *ServiceImpl) Add(ctx context.Context, draft Event) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = uuid.New().String()
	draft.Date = dateutil.StartOfDay(draft.Date)
	s.events = append(s.events, draft)
	s.persistLocked(ctx)

	s.publish(ctx, bus.CalendarEventCreated, draft)
	return &draft, nil
}

func (s *ServiceImpl) Edit(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == event.ID {
			event.Date = dateutil.StartOfDay(event.Date)
			s.events[i] = event
			s.persistLocked(ctx)
			s.publish(ctx, bus.CalendarEventUpdated, event)
			return nil
		}
	}
	log.Debugf("no event with id %s to edit", event.ID)
	return nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			deleted := s.events[i]
			s.events = append(s.events[:i:i], s.events[i+1:]...)
			s.persistLocked(ctx)
			s.publish(ctx, bus.CalendarEventDeleted, deleted)
			return nil
		}
	}
	log.Debugf("no event with id %s to delete", id)
	return nil
}

func (s *ServiceImpl) Events(ctx context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...), nil
}

func (s *ServiceImpl) OccurrencesForDay(ctx context.Context, day time.Time) ([]Occurrence, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}

	occurrences := make([]Occurrence, 0, len(events))
	for _, e := range events {
		for _, occ := range Expand(e, day, day) {
			if dateutil.SameDay(occ.Date, day) {
				occurrences = append(occurrences, occ)
			}
		}
	}
	return sortOccurrences(dedupeOccurrences(occurrences)), nil
}

func (s *ServiceImpl) OccurrencesForRange(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}

	occurrences := make([]Occurrence, 0, len(events))
	for _, e := range events {
		occurrences = append(occurrences, Expand(e, from, to)...)
	}
	return sortOccurrences(dedupeOccurrences(occurrences)), nil
}

// persistLocked writes the full event list to the blob store. A failed save
// is logged and otherwise swallowed: the in-memory list stays the source of
// truth until the next save succeeds.
func (s *ServiceImpl) persistLocked(ctx context.Context) {
	raw, err := encodeEvents(s.events)
	if err != nil {
		log.Errorf("could not serialize events: %v", err)
		return
	}
	if err := s.blobs.Set(ctx, storageKey, raw); err != nil {
		log.Errorf("could not persist events: %v", err)
	}
}

func (s *ServiceImpl) publish(ctx context.Context, eventType bus.EventType, e Event) {
	if s.bus == nil {
		return
	}
	change := bus.CalendarEventChange{ID: e.ID, Title: e.Title, Date: e.Date}
	if err := s.bus.Publish(bus.NewEvent(ctx, eventType, change)); err != nil {
		log.Debugf("notification for %s not fully delivered: %v", eventType, err)
	}
}

// eventRecord is the serialized shape of an Event: field-for-field, with the
// anchor date as an ISO-8601 date string and times as HH:MM.
type eventRecord struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Date        string           `json:"date"`
	StartTime   string           `json:"startTime,omitempty"`
	EndTime     string           `json:"endTime,omitempty"`
	Description string           `json:"description,omitempty"`
	Color       string           `json:"color,omitempty"`
	Recurrence  recurrenceRecord `json:"recurrence"`
}

type recurrenceRecord struct {
	Type       string `json:"type"`
	DaysOfWeek []int  `json:"daysOfWeek,omitempty"`
	DayOfMonth int    `json:"dayOfMonth,omitempty"`
	Interval   int    `json:"interval,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

func encodeEvents(events []Event) (string, error) {
	records := make([]eventRecord, 0, len(events))
	for _, e := range events {
		record := eventRecord{
			ID:          e.ID,
			Title:       e.Title,
			Date:        e.Date.Format(dateutil.DayFormat),
			Description: e.Description,
			Color:       e.Color,
			Recurrence: recurrenceRecord{
				Type:       string(e.Recurrence.Type),
				DayOfMonth: e.Recurrence.DayOfMonth,
				Interval:   e.Recurrence.Interval,
				Unit:       string(e.Recurrence.Unit),
			},
		}
		for _, weekday := range e.Recurrence.DaysOfWeek {
			record.Recurrence.DaysOfWeek = append(record.Recurrence.DaysOfWeek, int(weekday))
		}
		if e.StartTime != nil {
			record.StartTime = e.StartTime.String()
		}
		if e.EndTime != nil {
			record.EndTime = e.EndTime.String()
		}
		records = append(records, record)
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("could not marshal event records: %w", err)
	}
	return string(raw), nil
}

func decodeEvents(raw string) ([]Event, error) {
	var records []eventRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("could not unmarshal event records: %w", err)
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		date, err := time.ParseInLocation(dateutil.DayFormat, record.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("event %s has an invalid date %q: %w", record.ID, record.Date, err)
		}
		e := Event{
			ID:          record.ID,
			Title:       record.Title,
			Date:        date,
			Description: record.Description,
			Color:       record.Color,
			Recurrence: Recurrence{
				Type:       RecurrenceType(record.Recurrence.Type),
				DayOfMonth: record.Recurrence.DayOfMonth,
				Interval:   record.Recurrence.Interval,
				Unit:       IntervalUnit(record.Recurrence.Unit),
			},
		}
		for _, weekday := range record.Recurrence.DaysOfWeek {
			e.Recurrence.DaysOfWeek = append(e.Recurrence.DaysOfWeek, time.Weekday(weekday))
		}
		if record.StartTime != "" {
			t, err := ParseTimeOfDay(record.StartTime)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", record.ID, err)
			}
			e.StartTime = &t
		}
		if record.EndTime != "" {
			t, err := ParseTimeOfDay(record.EndTime)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", record.ID, err)
			}
			e.EndTime = &t
		}
		events = append(events, e)
	}
	return events, nil
}
