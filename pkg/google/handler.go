package google

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kalendo/kalendo/internal/dateutil"
	"github.com/kalendo/kalendo/internal/rest"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type exportResultDto struct {
	Exported int `json:"exported"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}

	if err := json.NewEncoder(w).Encode(calendarItems); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) ExportToGoogle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	calendarId := r.URL.Query().Get("calendarId")
	if calendarId == "" {
		writeExportBadRequest(w, "calendarId query parameter is required")
		return
	}
	from, err := time.Parse(dateutil.DayFormat, r.URL.Query().Get("from"))
	if err != nil {
		writeExportBadRequest(w, "from must be a date in format: "+dateutil.DayFormat)
		return
	}
	to, err := time.Parse(dateutil.DayFormat, r.URL.Query().Get("to"))
	if err != nil {
		writeExportBadRequest(w, "to must be a date in format: "+dateutil.DayFormat)
		return
	}

	exported, err := h.service.ExportOccurrences(r.Context(), calendarId, from, to)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(exportResultDto{Exported: exported}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
	}
}

func writeExportBadRequest(w http.ResponseWriter, details string) {
	w.WriteHeader(http.StatusBadRequest)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "Invalid request",
		Details: details,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}
