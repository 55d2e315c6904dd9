package ical

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	document, err := h.feed.Render(r.Context())
	if err != nil {
		log.Errorf("could not render calendar feed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(document)); err != nil {
		log.Errorf("could not write calendar feed: %v", err)
	}
}
