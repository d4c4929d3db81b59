package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "campkit/internal/errors"
	"campkit/internal/middleware"
	"campkit/internal/websocket"
)

// NotificationResponse reports the new visibility of a notification
type NotificationResponse struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
}

// NotificationHandler shows and hides notifications on connected pages
type NotificationHandler struct {
	center       NotificationCenter
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(center NotificationCenter, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *NotificationHandler {
	return &NotificationHandler{
		center:       center,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "notification")),
		errorHandler: errorHandler,
	}
}

// Routes returns the notification routes
func (h *NotificationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{id}/show", h.Show)
	r.Post("/{id}/hide", h.Hide)
	return r
}

// Show handles POST /api/notifications/{id}/show
func (h *NotificationHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.setVisible(w, r, true)
}

// Hide handles POST /api/notifications/{id}/hide
func (h *NotificationHandler) Hide(w http.ResponseWriter, r *http.Request) {
	h.setVisible(w, r, false)
}

func (h *NotificationHandler) setVisible(w http.ResponseWriter, r *http.Request, visible bool) {
	id := chi.URLParam(r, "id")
	if err := h.validator.Var("id", id, "required,max=128,printascii"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var err error
	if visible {
		err = h.center.Show(r.Context(), id)
	} else {
		err = h.center.Hide(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, websocket.ErrHubClosed) {
			err = apierrors.ErrServiceUnavailable
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, NotificationResponse{ID: id, Visible: visible})
}
