package bus

import "time"

const (
	CalendarEventCreated EventType = "calendar.event.created"
	CalendarEventUpdated EventType = "calendar.event.updated"
	CalendarEventDeleted EventType = "calendar.event.deleted"
)

// CalendarEventChange is the payload for all calendar mutation notifications.
type CalendarEventChange struct {
	ID    string
	Title string
	Date  time.Time
}
