package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	apierrors "campkit/internal/errors"
	"campkit/internal/exporter"
	"campkit/internal/middleware"
	"campkit/internal/pdf"
)

// PrintRequest carries an HTML fragment to print
type PrintRequest struct {
	HTML  string `json:"html" validate:"required"`
	Title string `json:"title,omitempty" validate:"max=200"`
}

// PDFRequest carries an HTML fragment to render as PDF
type PDFRequest struct {
	HTML     string `json:"html" validate:"required"`
	Title    string `json:"title,omitempty" validate:"max=200"`
	Filename string `json:"filename,omitempty" validate:"omitempty,filename"`
}

// PrintHandler serves printable pages and PDFs
type PrintHandler struct {
	service      PrintService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(service PrintService, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PrintHandler {
	return &PrintHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "print")),
		errorHandler: errorHandler,
	}
}

// Print handles POST /api/print
func (h *PrintHandler) Print(w http.ResponseWriter, r *http.Request) {
	var req PrintRequest
	if err := h.validator.Decode(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Page(r.Context(), req.HTML, req.Title)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewRenderError("print page failed", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page)
}

// PDF handles POST /api/pdf
func (h *PrintHandler) PDF(w http.ResponseWriter, r *http.Request) {
	var req PDFRequest
	if err := h.validator.Decode(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	doc, err := h.service.PDF(r.Context(), req.HTML, req.Title)
	if err != nil {
		if errors.Is(err, pdf.ErrUnavailable) {
			h.errorHandler.HandleError(w, r, apierrors.Unavailable(pdf.UnavailableMessage))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewRenderError("pdf generation failed", err))
		return
	}

	filename := exporter.SanitizeFilename(req.Filename, pdf.DefaultFilename)
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		filename += ".pdf"
	}

	w.Header().Set("Content-Type", pdf.MIMEType)
	w.Header().Set("Content-Disposition", exporter.ContentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(doc)
}
