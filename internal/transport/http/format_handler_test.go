package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campkit/internal/format"
)

func newFormatRouter(t *testing.T) chi.Router {
	t.Helper()
	d := newTestDeps(t)
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	f, err := format.New("fr-FR", "EUR", paris)
	require.NoError(t, err)

	h := NewFormatHandler(f, d.validator, d.logger, d.errorHandler)
	h.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, paris) }

	r := chi.NewRouter()
	r.Mount("/api/format", h.Routes())
	return r
}

func formatted(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp FormatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Formatted
}

func TestFormatHandler_Date(t *testing.T) {
	router := newFormatRouter(t)

	tests := []struct {
		query string
		want  string
	}{
		{"value=2026-10-17", "17/10/2026"},
		{"value=2026-10-17&style=short", "17/10/2026"},
		{"value=2026-10-17&style=long", "17 octobre 2026"},
		{"value=2026-10-17&style=full", "samedi 17 octobre 2026"},
		{"value=2026-10-17T14:05:09&style=time", "14:05:09"},
		{"value=2026-10-17T14:05:09&style=time-short", "14:05"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, formatted(t, get(router, "/api/format/date?"+tt.query)))
		})
	}
}

func TestFormatHandler_DateErrors(t *testing.T) {
	router := newFormatRouter(t)

	for _, q := range []string{"", "value=2026-10-17&style=fancy", "value=pas-une-date"} {
		rec := get(router, "/api/format/date?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestFormatHandler_Currency(t *testing.T) {
	router := newFormatRouter(t)

	got := formatted(t, get(router, "/api/format/currency?amount=1234.5"))
	assert.Equal(t, "1 234,50 €", strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(got))

	rec := get(router, "/api/format/currency?amount=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(router, "/api/format/currency?amount=10&currency=XXXX")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormatHandler_Age(t *testing.T) {
	router := newFormatRouter(t)

	tests := []struct {
		birth string
		want  int
	}{
		{"2014-10-17", 12},
		{"2014-10-18", 11},
		{"2014-11-01", 11},
		{"2014-09-30", 12},
	}

	for _, tt := range tests {
		t.Run(tt.birth, func(t *testing.T) {
			rec := get(router, "/api/format/age?birth="+tt.birth)
			require.Equal(t, http.StatusOK, rec.Code)
			var resp AgeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Age)
		})
	}

	assert.Equal(t, http.StatusBadRequest, get(router, "/api/format/age").Code)
}
