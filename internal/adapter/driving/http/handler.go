// Package httphandler is the JSON API the display layer reads from.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
)

// Board serves the stored lists and check filters.
type Board interface {
	List(ctx context.Context, kind model.ListKind) (*application.BoardList, error)
	Filters(ctx context.Context) (model.FilterSettings, error)
	SetFilters(ctx context.Context, filters model.FilterSettings) error
}

// Refresher starts fetch cycles on demand.
type Refresher interface {
	TriggerAsync(ctx context.Context) bool
	InFlight() bool
}

// Scheduler exposes the poll loop's interval.
type Scheduler interface {
	SetInterval(interval time.Duration) error
	Interval() time.Duration
	Running() bool
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	board         Board
	refresher     Refresher
	scheduler     Scheduler
	notifications driven.NotificationStore
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	board Board,
	refresher Refresher,
	scheduler Scheduler,
	notifications driven.NotificationStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		board:         board,
		refresher:     refresher,
		scheduler:     scheduler,
		notifications: notifications,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/prs/{list}", h.ListPRs)
	mux.HandleFunc("POST /api/v1/refresh", h.Refresh)
	mux.HandleFunc("GET /api/v1/settings/checks", h.GetCheckFilters)
	mux.HandleFunc("PUT /api/v1/settings/checks", h.PutCheckFilters)
	mux.HandleFunc("GET /api/v1/settings/poll-interval", h.GetPollInterval)
	mux.HandleFunc("PUT /api/v1/settings/poll-interval", h.PutPollInterval)
	mux.HandleFunc("GET /api/v1/notifications", h.ListNotifications)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListPRs returns one stored list with readiness and the branch's fetch status.
func (h *Handler) ListPRs(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseListKind(r.PathValue("list"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown list: expected authored or review-requested")
		return
	}

	list, err := h.board.List(r.Context(), kind)
	if err != nil {
		h.logger.Error("failed to list PRs", "list", string(kind), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(list))
}

// Refresh starts a fetch cycle in the background. A cycle already in flight is
// left alone and reported with started=false.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	// The cycle outlives the request.
	started := h.refresher.TriggerAsync(context.WithoutCancel(r.Context()))

	writeJSON(w, http.StatusAccepted, RefreshResponse{Started: started, InFlight: true})
}

// GetCheckFilters returns the required and ignored check names.
func (h *Handler) GetCheckFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.board.Filters(r.Context())
	if err != nil {
		h.logger.Error("failed to get check filters", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toCheckFiltersBody(filters))
}

// PutCheckFilters replaces the check filters.
func (h *Handler) PutCheckFilters(w http.ResponseWriter, r *http.Request) {
	var req CheckFiltersBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	filters := model.FilterSettings{
		RequiredChecks: nonNil(req.Required),
		IgnoredChecks:  nonNil(req.Ignored),
	}

	if err := h.board.SetFilters(r.Context(), filters); err != nil {
		if errors.Is(err, model.ErrOverlappingCheckNames) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to set check filters", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toCheckFiltersBody(filters))
}

// GetPollInterval returns the scheduler's interval in seconds.
func (h *Handler) GetPollInterval(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PollIntervalBody{Seconds: int(h.scheduler.Interval() / time.Second)})
}

// PutPollInterval restarts the scheduler with a new interval.
func (h *Handler) PutPollInterval(w http.ResponseWriter, r *http.Request) {
	var req PollIntervalBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Seconds <= 0 {
		writeError(w, http.StatusBadRequest, "seconds must be a positive integer")
		return
	}

	if err := h.scheduler.SetInterval(time.Duration(req.Seconds) * time.Second); err != nil {
		h.logger.Error("failed to set poll interval", "seconds", req.Seconds, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("poll interval changed", "seconds", req.Seconds)
	writeJSON(w, http.StatusOK, req)
}

// ListNotifications returns recent notification history, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	records, err := h.notifications.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]NotificationResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toNotificationResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		Time:             time.Now().UTC().Format(time.RFC3339),
		FetchInFlight:    h.refresher.InFlight(),
		SchedulerRunning: h.scheduler.Running(),
	})
}

// parseListKind maps the URL segment to a list kind.
func parseListKind(s string) (model.ListKind, bool) {
	switch s {
	case "authored":
		return model.ListAuthored, true
	case "review-requested":
		return model.ListReviewRequested, true
	default:
		return "", false
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
