package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "campkit/internal/errors"
	"campkit/internal/exporter"
	"campkit/internal/middleware"
	"campkit/internal/record"
)

// ExportHandler turns posted records into file downloads
type ExportHandler struct {
	service      ExportService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ExportService, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "export")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/csv", h.Export("csv"))
	r.Post("/xlsx", h.Export("xlsx"))
	return r
}

// Export handles POST /api/export/{format}?filename=. The body is a JSON
// array of records. An empty array answers 204 with nothing to download.
func (h *ExportHandler) Export(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.URL.Query().Get("filename")
		if err := h.validator.Var("filename", filename, "omitempty,filename"); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		var rs record.RecordSet
		if err := h.validator.DecodeJSON(w, r, &rs); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		sink := exporter.NewResponseSink(w)
		if err := h.service.Export(r.Context(), format, rs, sink, filename); err != nil {
			if sink.Delivered() {
				// headers are gone, the client sees a truncated download
				h.logger.ErrorContext(r.Context(), "export body write failed",
					slog.String("format", format),
					slog.String("error", err.Error()))
				return
			}
			h.errorHandler.HandleError(w, r, apierrors.NewExportError("export failed", err).
				WithContext("format", format))
			return
		}

		if !sink.Delivered() {
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
