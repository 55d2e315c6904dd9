package app

import (
	"context"

	"github.com/kalendo/kalendo/internal/bus"
	"github.com/kalendo/kalendo/internal/config"
	"github.com/kalendo/kalendo/internal/utils"
	"github.com/kalendo/kalendo/pkg/event"
	"github.com/kalendo/kalendo/pkg/google"
	"github.com/kalendo/kalendo/pkg/ical"
	"github.com/kalendo/kalendo/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus   *bus.Bus
	Clock utils.Clock

	EventService event.Service
	EventHandler *event.Handler

	Feed        *ical.Feed
	FeedHandler *ical.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, blobs storage.BlobStore, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = bus.New()
	deps.Clock = &utils.SystemClock{}

	deps.EventService = event.NewService(ctx, blobs, deps.Bus)
	deps.EventHandler = event.NewHandler(deps.EventService)

	deps.Feed = ical.NewFeed(deps.EventService, deps.Clock)
	deps.FeedHandler = ical.NewHandler(deps.Feed)

	deps.GoogleAuth = google.NewGoogleAuth(blobs, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, deps.EventService)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	registerAuditLog(deps.Bus)

	return deps
}

// registerAuditLog logs every calendar mutation published on the bus.
func registerAuditLog(b *bus.Bus) {
	logChange := func(action string) func(bus.Event) error {
		return func(e bus.Event) error {
			change, ok := e.Data.(bus.CalendarEventChange)
			if !ok {
				return nil
			}
			log.Infof("calendar event %s: %s (%s)", action, change.Title, change.ID)
			return nil
		}
	}
	b.Subscribe(bus.CalendarEventCreated, logChange("created"))
	b.Subscribe(bus.CalendarEventUpdated, logChange("updated"))
	b.Subscribe(bus.CalendarEventDeleted, logChange("deleted"))
}
