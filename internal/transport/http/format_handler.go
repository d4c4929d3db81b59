package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "campkit/internal/errors"
	"campkit/internal/format"
	"campkit/internal/middleware"
)

// Date styles accepted by GET /api/format/date
const (
	StyleShort     = "short"
	StyleLong      = "long"
	StyleFull      = "full"
	StyleTime      = "time"
	StyleTimeShort = "time-short"
)

// FormatResponse carries one formatted value
type FormatResponse struct {
	Value     string `json:"value"`
	Formatted string `json:"formatted"`
}

// AgeResponse carries a computed age
type AgeResponse struct {
	Birth string `json:"birth"`
	Age   int    `json:"age"`
}

type dateQuery struct {
	Value string `json:"value" validate:"required"`
	Style string `json:"style" validate:"omitempty,oneof=short long full time time-short"`
}

type currencyQuery struct {
	Amount   string `json:"amount" validate:"required,numeric"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

// FormatHandler formats dates, amounts and ages for display
type FormatHandler struct {
	formatter    *format.Formatter
	validator    *middleware.Validator
	now          func() time.Time
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFormatHandler creates a new format handler
func NewFormatHandler(formatter *format.Formatter, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FormatHandler {
	return &FormatHandler{
		formatter:    formatter,
		validator:    validator,
		now:          time.Now,
		logger:       logger.With(slog.String("handler", "format")),
		errorHandler: errorHandler,
	}
}

// Routes returns the format routes
func (h *FormatHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/date", h.Date)
	r.Get("/currency", h.Currency)
	r.Get("/age", h.Age)
	return r
}

// Date handles GET /api/format/date?value=&style=
func (h *FormatHandler) Date(w http.ResponseWriter, r *http.Request) {
	q := dateQuery{
		Value: r.URL.Query().Get("value"),
		Style: r.URL.Query().Get("style"),
	}
	if err := h.validator.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	t, err := h.formatter.Parse(q.Value)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("value", err.Error()))
		return
	}

	var out string
	switch q.Style {
	case StyleLong:
		out = h.formatter.Date(t, format.DateOptions{Day: format.Numeric, Month: format.Long, Year: format.Numeric})
	case StyleFull:
		out = h.formatter.Date(t, format.DateOptions{Weekday: format.Long, Day: format.Numeric, Month: format.Long, Year: format.Numeric})
	case StyleTime:
		out = h.formatter.Time(t, format.TimeOptions{})
	case StyleTimeShort:
		out = h.formatter.Time(t, format.TimeOptions{OmitSeconds: true})
	default:
		out = h.formatter.Date(t, format.DateOptions{})
	}

	render.JSON(w, r, FormatResponse{Value: q.Value, Formatted: out})
}

// Currency handles GET /api/format/currency?amount=&currency=
func (h *FormatHandler) Currency(w http.ResponseWriter, r *http.Request) {
	q := currencyQuery{
		Amount:   r.URL.Query().Get("amount"),
		Currency: r.URL.Query().Get("currency"),
	}
	if err := h.validator.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	amount, err := strconv.ParseFloat(q.Amount, 64)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("amount", "amount must be numeric"))
		return
	}

	out := h.formatter.FormatCurrency(amount)
	if q.Currency != "" {
		if out, err = h.formatter.FormatCurrencyIn(amount, q.Currency); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("currency", err.Error()))
			return
		}
	}

	render.JSON(w, r, FormatResponse{Value: q.Amount, Formatted: out})
}

// Age handles GET /api/format/age?birth=
func (h *FormatHandler) Age(w http.ResponseWriter, r *http.Request) {
	birth := r.URL.Query().Get("birth")
	if err := h.validator.Var("birth", birth, "required"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	age, err := h.formatter.Age(birth, h.now())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("birth", err.Error()))
		return
	}

	render.JSON(w, r, AgeResponse{Birth: birth, Age: age})
}
