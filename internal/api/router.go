// ABOUTME: HTTP router for the gachi JSON API
// ABOUTME: Wires gorilla/mux routes onto the schedule, family and recommend services

package api

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/harper/gachi/internal/family"
	"github.com/harper/gachi/internal/recommend"
	"github.com/harper/gachi/internal/schedule"
	"github.com/harper/gachi/internal/timeutil"
)

// UserHeader lets a client act as another local user. The configured user is
// used when it is absent.
const UserHeader = "X-Gachi-User"

// Handler serves the JSON API.
type Handler struct {
	Schedules   *schedule.Service
	Family      *family.Service
	Recommender *recommend.Recommender
	Clock       timeutil.Clock
	UserID      string
	District    string
	Logger      *log.Logger
}

// NewRouter constructs the mux router with every API route registered.
func NewRouter(h *Handler) *mux.Router {
	if h.Logger == nil {
		h.Logger = log.Default()
	}

	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/calendar/{year:[0-9]{4}}/{month:[0-9]{1,2}}", h.GetCalendar).Methods(http.MethodGet)
	api.HandleFunc("/schedules", h.ListSchedules).Methods(http.MethodGet)
	api.HandleFunc("/schedules", h.CreateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/schedules/{id}", h.DeleteSchedule).Methods(http.MethodDelete)
	api.HandleFunc("/moods", h.RecordMood).Methods(http.MethodPost)
	api.HandleFunc("/recommendations", h.GetRecommendations).Methods(http.MethodGet)
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Logger.Debug("api request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) userID(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
		return u
	}
	return h.UserID
}
