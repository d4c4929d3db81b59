package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "campkit/internal/errors"
	"campkit/internal/view"
)

// CapacityHandler serves activity occupancy from the backend
type CapacityHandler struct {
	checker      CapacityChecker
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewCapacityHandler creates a new capacity handler
func NewCapacityHandler(checker CapacityChecker, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CapacityHandler {
	return &CapacityHandler{
		checker:      checker,
		logger:       logger.With(slog.String("handler", "capacity")),
		errorHandler: errorHandler,
	}
}

// Routes returns the activity routes
func (h *CapacityHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/{id}/capacity", func(r chi.Router) {
		r.Use(h.ActivityCtx)
		r.Get("/", h.GetCapacity)
		r.Get("/badge", h.GetBadge)
	})
	return r
}

type activityIDKey struct{}

// ActivityCtx validates the activity id path parameter
func (h *CapacityHandler) ActivityCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id <= 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "id must be a positive integer"))
			return
		}
		ctx := withActivityID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCapacity handles GET /api/activities/{id}/capacity
func (h *CapacityHandler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	id := activityID(r.Context())

	capacity := h.checker.CheckCapacity(r.Context(), id)
	if capacity == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewNetworkError("capacity check failed", nil).
			WithContext("activity_id", id))
		return
	}

	render.JSON(w, r, capacity)
}

// GetBadge handles GET /api/activities/{id}/capacity/badge. An unknown
// capacity answers 204 so the page keeps its current badge.
func (h *CapacityHandler) GetBadge(w http.ResponseWriter, r *http.Request) {
	id := activityID(r.Context())

	badge, err := view.CapacityBadge(h.checker.CheckCapacity(r.Context(), id))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewRenderError("badge render failed", err))
		return
	}
	if badge == "" {
		h.logger.DebugContext(r.Context(), "capacity unavailable, badge left untouched",
			slog.Int("activity_id", id))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(badge))
}
