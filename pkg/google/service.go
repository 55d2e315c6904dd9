package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kalendo/kalendo/internal/dateutil"
	"github.com/kalendo/kalendo/pkg/event"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrUnauthenticated = errors.New("user is not authenticated in Google")

type CalendarItem struct {
	ID      string
	Summary string
}

type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	ExportOccurrences(ctx context.Context, calendarId string, from time.Time, to time.Time) (int, error)
}

type ServiceImpl struct {
	auth   *GoogleAuth
	events event.Service
}

func NewService(auth *GoogleAuth, events event.Service) *ServiceImpl {
	return &ServiceImpl{
		auth:   auth,
		events: events,
	}
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}
	var googleCalendars []CalendarItem
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
		})
	}
	return googleCalendars, nil
}

// ExportOccurrences inserts every occurrence within the given range into the
// selected Google calendar and returns how many events were created.
func (s *ServiceImpl) ExportOccurrences(ctx context.Context, calendarId string, from time.Time, to time.Time) (int, error) {
	googleService, err := s.prepareGoogleService(ctx)
	if err != nil {
		return 0, err
	}

	occurrences, err := s.events.OccurrencesForRange(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("unable to expand occurrences for export: %w", err)
	}

	exported := 0
	for _, occurrence := range occurrences {
		googleEvent := toGoogleEvent(occurrence)
		_, err := googleService.Events.Insert(calendarId, googleEvent).Context(ctx).Do()
		if err != nil {
			err := fmt.Errorf("unable to create event in Google Calendar: %v", err)
			log.Error(err)
			return exported, err
		}
		exported++
	}
	log.Debugf("Exported %d occurrences to Google calendar %s", exported, calendarId)
	return exported, nil
}

func toGoogleEvent(occurrence event.Occurrence) *calendar.Event {
	googleEvent := &calendar.Event{
		Summary:     occurrence.Title,
		Description: occurrence.Description,
	}
	if occurrence.Timed() {
		googleEvent.Start = &calendar.EventDateTime{
			DateTime: occurrence.StartTime.At(occurrence.Date).Format(time.RFC3339),
		}
		googleEvent.End = &calendar.EventDateTime{
			DateTime: occurrence.EndTime.At(occurrence.Date).Format(time.RFC3339),
		}
	} else {
		googleEvent.Start = &calendar.EventDateTime{
			Date: occurrence.Date.Format(dateutil.DayFormat),
		}
		googleEvent.End = &calendar.EventDateTime{
			Date: dateutil.NextDay(occurrence.Date).Format(dateutil.DayFormat),
		}
	}
	return googleEvent
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context) (*calendar.Service, error) {
	client, err := s.auth.getClient(ctx)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %v", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("user is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to retrieve Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}

	return service, nil
}
