package event

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kalendo/kalendo/internal/dateutil"
	"github.com/kalendo/kalendo/internal/rest"
	log "github.com/sirupsen/logrus"
)

// Handler is the HTTP surface of the calendar. It owns request validation and
// the conflict check before mutations; the store itself assumes well-formed
// input and never rejects on conflict.
type Handler struct {
	events Service
}

func NewHandler(events Service) *Handler {
	return &Handler{events: events}
}

type RecurrenceDTO struct {
	Type       string `json:"type"`
	DaysOfWeek []int  `json:"daysOfWeek,omitempty"`
	DayOfMonth int    `json:"dayOfMonth,omitempty"`
	Interval   int    `json:"interval,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

type EventDTO struct {
	ID          string        `json:"id,omitempty"`
	Title       string        `json:"title"`
	Date        string        `json:"date"`
	StartTime   string        `json:"startTime,omitempty"`
	EndTime     string        `json:"endTime,omitempty"`
	Description string        `json:"description,omitempty"`
	Color       string        `json:"color,omitempty"`
	Recurrence  RecurrenceDTO `json:"recurrence"`
}

type OccurrenceDTO struct {
	EventDTO
	InstanceID string `json:"instanceId"`
	ParentID   string `json:"parentId,omitempty"`
}

// GetOccurrences serves both the day view (?date=) and the range view
// (?from=&to=), dates in ISO-8601 day form.
func (h *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	var occurrences []Occurrence

	if dateString := r.URL.Query().Get("date"); dateString != "" {
		date, err := parseDay(dateString)
		if err != nil {
			writeBadRequest(w, "Invalid date format", "'date' must be an ISO-8601 date (YYYY-MM-DD)")
			return
		}
		occurrences, err = h.events.OccurrencesForDay(r.Context(), date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	} else {
		from, err := parseDay(r.URL.Query().Get("from"))
		if err != nil {
			writeBadRequest(w, "Invalid from (date) format", "'from' must be an ISO-8601 date (YYYY-MM-DD)")
			return
		}
		to, err := parseDay(r.URL.Query().Get("to"))
		if err != nil {
			writeBadRequest(w, "Invalid to (date) format", "'to' must be an ISO-8601 date (YYYY-MM-DD)")
			return
		}
		occurrences, err = h.events.OccurrencesForRange(r.Context(), from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, occ := range occurrences {
		dtos = append(dtos, occurrenceToDTO(occ))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.ID = ""

	draft, err := dtoToEvent(dto)
	if err != nil {
		writeBadRequest(w, "Invalid event", err.Error())
		return
	}

	if conflicted, err := h.checkConflict(r, draft); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	} else if conflicted {
		writeConflict(w, draft)
		return
	}

	added, err := h.events.Add(r.Context(), draft)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(*added)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.ID = mux.Vars(r)["eventId"]

	updated, err := dtoToEvent(dto)
	if err != nil {
		writeBadRequest(w, "Invalid event", err.Error())
		return
	}

	if conflicted, err := h.checkConflict(r, updated); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	} else if conflicted {
		writeConflict(w, updated)
		return
	}

	if err := h.events.Edit(r.Context(), updated); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type moveEventDTO struct {
	Date string `json:"date"`
}

// MoveEvent repositions an event onto another day, keeping all other fields.
// This backs drag-and-drop in the month view.
func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	var dto moveEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date, err := parseDay(dto.Date)
	if err != nil {
		writeBadRequest(w, "Invalid date format", "'date' must be an ISO-8601 date (YYYY-MM-DD)")
		return
	}

	eventId := mux.Vars(r)["eventId"]
	stored, err := h.findEvent(r, eventId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stored == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Event not found"})
		return
	}

	moved := *stored
	moved.Date = date

	if conflicted, err := h.checkConflict(r, moved); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	} else if conflicted {
		writeConflict(w, moved)
		return
	}

	if err := h.events.Edit(r.Context(), moved); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(moved)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	eventId := mux.Vars(r)["eventId"]
	if err := h.events.Delete(r.Context(), eventId); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MonthGrid returns the day matrix the month view renders: full weeks from
// the one containing the 1st through the one containing the last day.
func (h *Handler) MonthGrid(w http.ResponseWriter, r *http.Request) {
	month, err := time.ParseInLocation("2006-01", r.URL.Query().Get("month"), time.Local)
	if err != nil {
		writeBadRequest(w, "Invalid month format", "'month' must be YYYY-MM")
		return
	}

	grid := dateutil.MonthGrid(month, time.Sunday)
	weeks := make([][]string, 0, len(grid))
	for _, week := range grid {
		days := make([]string, 0, len(week))
		for _, day := range week {
			days = append(days, day.Format(dateutil.DayFormat))
		}
		weeks = append(weeks, days)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(weeks); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// checkConflict runs the conflict predicate against the candidate's day view.
// Untimed candidates never conflict, so the day query is skipped for them.
func (h *Handler) checkConflict(r *http.Request, candidate Event) (bool, error) {
	if !candidate.Timed() {
		return false, nil
	}
	existing, err := h.events.OccurrencesForDay(r.Context(), candidate.Date)
	if err != nil {
		return false, fmt.Errorf("could not load occurrences for conflict check: %w", err)
	}
	return Conflicts(candidate, existing), nil
}

func (h *Handler) findEvent(r *http.Request, id string) (*Event, error) {
	events, err := h.events.Events(r.Context())
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func writeBadRequest(w http.ResponseWriter, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeConflict(w http.ResponseWriter, candidate Event) {
	log.Debugf("rejected conflicting placement of %q on %s", candidate.Title, candidate.Date.Format(dateutil.DayFormat))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   "Event conflicts with an existing event",
		Details: fmt.Sprintf("another timed event overlaps %s-%s on %s", candidate.StartTime, candidate.EndTime, candidate.Date.Format(dateutil.DayFormat)),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dateutil.DayFormat, s, time.Local)
}

func dtoToEvent(dto EventDTO) (Event, error) {
	if dto.Title == "" {
		return Event{}, fmt.Errorf("title must not be empty")
	}
	date, err := parseDay(dto.Date)
	if err != nil {
		return Event{}, fmt.Errorf("date must be an ISO-8601 date (YYYY-MM-DD)")
	}
	if (dto.StartTime == "") != (dto.EndTime == "") {
		return Event{}, fmt.Errorf("startTime and endTime must be set together")
	}

	e := Event{
		ID:          dto.ID,
		Title:       dto.Title,
		Date:        date,
		Description: dto.Description,
		Color:       dto.Color,
	}
	if dto.StartTime != "" {
		start, err := ParseTimeOfDay(dto.StartTime)
		if err != nil {
			return Event{}, err
		}
		end, err := ParseTimeOfDay(dto.EndTime)
		if err != nil {
			return Event{}, err
		}
		if end.Minutes() <= start.Minutes() {
			return Event{}, fmt.Errorf("endTime must be after startTime")
		}
		e.StartTime = &start
		e.EndTime = &end
	}

	recurrence, err := dtoToRecurrence(dto.Recurrence)
	if err != nil {
		return Event{}, err
	}
	e.Recurrence = recurrence
	return e, nil
}

func dtoToRecurrence(dto RecurrenceDTO) (Recurrence, error) {
	recurrence := Recurrence{Type: RecurrenceType(dto.Type)}
	if dto.Type == "" {
		recurrence.Type = RecurrenceNone
	}

	switch recurrence.Type {
	case RecurrenceNone, RecurrenceDaily:
	case RecurrenceWeekly:
		for _, day := range dto.DaysOfWeek {
			if day < 0 || day > 6 {
				return Recurrence{}, fmt.Errorf("daysOfWeek values must be 0 (Sunday) through 6 (Saturday)")
			}
			recurrence.DaysOfWeek = append(recurrence.DaysOfWeek, time.Weekday(day))
		}
	case RecurrenceMonthly:
		if dto.DayOfMonth < 1 || dto.DayOfMonth > 31 {
			return Recurrence{}, fmt.Errorf("dayOfMonth must be 1 through 31")
		}
		recurrence.DayOfMonth = dto.DayOfMonth
	case RecurrenceCustom:
		if dto.Interval < 1 {
			return Recurrence{}, fmt.Errorf("interval must be a positive integer")
		}
		unit := IntervalUnit(dto.Unit)
		if unit != UnitDays && unit != UnitWeeks && unit != UnitMonths {
			return Recurrence{}, fmt.Errorf("unit must be one of days, weeks, months")
		}
		recurrence.Interval = dto.Interval
		recurrence.Unit = unit
	default:
		return Recurrence{}, fmt.Errorf("unknown recurrence type %q", dto.Type)
	}
	return recurrence, nil
}

func eventToDTO(e Event) EventDTO {
	dto := EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.Date.Format(dateutil.DayFormat),
		Description: e.Description,
		Color:       e.Color,
		Recurrence: RecurrenceDTO{
			Type:       string(e.Recurrence.Type),
			DayOfMonth: e.Recurrence.DayOfMonth,
			Interval:   e.Recurrence.Interval,
			Unit:       string(e.Recurrence.Unit),
		},
	}
	for _, day := range e.Recurrence.DaysOfWeek {
		dto.Recurrence.DaysOfWeek = append(dto.Recurrence.DaysOfWeek, int(day))
	}
	if e.StartTime != nil {
		dto.StartTime = e.StartTime.String()
	}
	if e.EndTime != nil {
		dto.EndTime = e.EndTime.String()
	}
	return dto
}

func occurrenceToDTO(occ Occurrence) OccurrenceDTO {
	return OccurrenceDTO{
		EventDTO:   eventToDTO(occ.Event),
		InstanceID: occ.InstanceID,
		ParentID:   occ.ParentID,
	}
}
