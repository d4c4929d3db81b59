package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campkit/internal/pdf"
	"campkit/internal/services"
	"campkit/internal/view"
)

// MockPrintService is a mock implementation of PrintService
type MockPrintService struct {
	mock.Mock
}

func (m *MockPrintService) Page(ctx context.Context, fragment, title string) ([]byte, error) {
	args := m.Called(ctx, fragment, title)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockPrintService) PDF(ctx context.Context, fragment, title string) ([]byte, error) {
	args := m.Called(ctx, fragment, title)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func newPrintRouter(t *testing.T, svc PrintService) chi.Router {
	t.Helper()
	d := newTestDeps(t)
	h := NewPrintHandler(svc, d.validator, d.logger, d.errorHandler)
	r := chi.NewRouter()
	r.Post("/api/print", h.Print)
	r.Post("/api/pdf", h.PDF)
	return r
}

func post(router http.Handler, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestPrintHandler_Print(t *testing.T) {
	svc := services.NewPrintService(view.NewPrinter(""), pdf.New(pdf.Config{}, nil), nil)
	router := newPrintRouter(t, svc)

	rec := post(router, "/api/print", `{"html":"<table><tr><td>Dupont</td></tr></table><img src=x onerror=alert(1)>","title":"Inscrits"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	page := rec.Body.String()
	assert.Contains(t, page, "<title>Inscrits</title>")
	assert.Contains(t, page, "<td>Dupont</td>")
	assert.NotContains(t, page, "onerror")
	assert.Contains(t, page, "window.print()")
}

func TestPrintHandler_PrintValidation(t *testing.T) {
	svc := new(MockPrintService)
	router := newPrintRouter(t, svc)

	rec := post(router, "/api/print", `{"title":"vide"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	details := problem["details"].(map[string]interface{})
	errs := details["errors"].([]interface{})
	assert.Equal(t, "html", errs[0].(map[string]interface{})["field"])
	svc.AssertNotCalled(t, "Page", mock.Anything, mock.Anything, mock.Anything)
}

func TestPrintHandler_PDF(t *testing.T) {
	svc := new(MockPrintService)
	svc.On("PDF", mock.Anything, "<p>Planning</p>", "Semaine 1").Return([]byte("%PDF-1.4 fake"), nil)
	router := newPrintRouter(t, svc)

	rec := post(router, "/api/pdf", `{"html":"<p>Planning</p>","title":"Semaine 1","filename":"planning"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pdf.MIMEType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=planning.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 fake", rec.Body.String())
	svc.AssertExpectations(t)
}

func TestPrintHandler_PDFDefaultFilename(t *testing.T) {
	svc := new(MockPrintService)
	svc.On("PDF", mock.Anything, mock.Anything, "").Return([]byte("%PDF"), nil)

	rec := post(newPrintRouter(t, svc), "/api/pdf", `{"html":"<p>x</p>"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), pdf.DefaultFilename)
}

func TestPrintHandler_PDFErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"renderer disabled", fmt.Errorf("failed to render pdf: %w", pdf.ErrUnavailable), http.StatusServiceUnavailable, pdf.UnavailableMessage},
		{"renderer failed", fmt.Errorf("chrome crashed"), http.StatusInternalServerError, "pdf generation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPrintService)
			svc.On("PDF", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := post(newPrintRouter(t, svc), "/api/pdf", `{"html":"<p>x</p>"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantDetail, decodeProblem(t, rec)["detail"])
		})
	}
}

func TestPrintHandler_PDFRejectsBadFilename(t *testing.T) {
	svc := new(MockPrintService)

	rec := post(newPrintRouter(t, svc), "/api/pdf", `{"html":"<p>x</p>","filename":"../../etc/passwd"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "PDF", mock.Anything, mock.Anything, mock.Anything)
}
