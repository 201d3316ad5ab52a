// ABOUTME: HTTP handlers for calendar, schedules, moods and recommendations
// ABOUTME: Maps service sentinel errors onto HTTP status codes

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/harper/gachi/internal/family"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/recommend"
	"github.com/harper/gachi/internal/schedule"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor picks the response code for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrNotOwner),
		errors.Is(err, schedule.ErrNotInGroup),
		errors.Is(err, family.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, schedule.ErrInvalidTitle),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrInvalidTime),
		errors.Is(err, schedule.ErrInvalidRecurrence):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("api error", "err", err)
	}
	writeError(w, status, err.Error())
}

// calendarResponse is a month grid with entries keyed by day of month.
type calendarResponse struct {
	Month              string                   `json:"month"`
	FirstWeekdayOffset int                      `json:"first_weekday_offset"`
	DayCount           int                      `json:"day_count"`
	Weeks              [][]int                  `json:"weeks"`
	Days               map[int][]schedule.Entry `json:"days"`
}

// GetCalendar returns the month grid for /api/calendar/{year}/{month}, where
// month is 1-12. ?member= shows a family member's shared schedules.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}

	viewer := h.userID(r)
	var view *schedule.MonthView
	if member := strings.TrimSpace(r.URL.Query().Get("member")); member != "" {
		view, err = h.Schedules.MemberMonth(r.Context(), viewer, member, year, month-1)
	} else {
		view, err = h.Schedules.Month(r.Context(), viewer, year, month-1)
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calendarResponse{
		Month:              view.Grid.String(),
		FirstWeekdayOffset: view.Grid.FirstWeekdayOffset,
		DayCount:           view.Grid.DayCount,
		Weeks:              view.Grid.Weeks(),
		Days:               view.Days,
	})
}

type schedulesResponse struct {
	Date      string           `json:"date"`
	Schedules []schedule.Entry `json:"schedules"`
	Total     int              `json:"total"`
}

// ListSchedules returns one day's merged schedules. ?date= accepts the same
// values as the CLI and defaults to today.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseDay(h.Clock, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.Schedules.Day(r.Context(), h.userID(r), date)
	if err != nil {
		h.fail(w, err)
		return
	}
	if entries == nil {
		entries = []schedule.Entry{}
	}
	writeJSON(w, http.StatusOK, schedulesResponse{Date: date, Schedules: entries, Total: len(entries)})
}

type createScheduleRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Shared      bool   `json:"shared_with_family"`
	Recurrence  string `json:"recurrence"`
}

// CreateSchedule adds a schedule for the requesting user.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := timeutil.ParseDay(h.Clock, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc, err := h.Schedules.Add(r.Context(), schedule.AddInput{
		UserID:      h.userID(r),
		Title:       req.Title,
		Date:        date,
		Time:        req.Time,
		Description: req.Description,
		Shared:      req.Shared,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// DeleteSchedule removes one of the requesting user's schedules by ID or prefix.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	sc, err := h.Schedules.Delete(r.Context(), h.userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": sc.ID})
}

type moodRequest struct {
	Mood string `json:"mood"`
}

type moodResponse struct {
	*models.MoodRecord
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// RecordMood stores a mood check-in for the requesting user.
func (h *Handler) RecordMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := models.ParseMood(strings.ToLower(strings.TrimSpace(req.Mood))); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.Family.RecordMood(r.Context(), h.userID(r), req.Mood)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, moodResponse{MoodRecord: rec, Emoji: rec.Mood.Emoji(), Label: rec.Mood.Label()})
}

type recommendationsResponse struct {
	*recommend.Result
	Configured bool `json:"configured"`
}

// GetRecommendations asks for activity ideas in ?district= (default: the
// configured district). Without an API key only the catalogue is returned.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	district := strings.TrimSpace(r.URL.Query().Get("district"))
	if district == "" {
		district = h.District
	}
	if district == "" {
		writeError(w, http.StatusBadRequest, "district is required")
		return
	}

	res, err := h.Recommender.Recommend(r.Context(), district)
	switch {
	case errors.Is(err, recommend.ErrNotConfigured):
		writeJSON(w, http.StatusOK, recommendationsResponse{Result: res})
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, recommendationsResponse{Result: res, Configured: true})
	}
}
