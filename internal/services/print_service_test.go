package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campkit/internal/pdf"
	"campkit/internal/view"
)

// MockRenderer is a mock implementation of pdf.Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	args := m.Called(ctx, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestPrintService_Page(t *testing.T) {
	s := NewPrintService(view.NewPrinter(""), pdf.New(pdf.Config{}, nil), nil)

	page, err := s.Page(context.Background(), `<table><tr><td>Dupont</td></tr></table><script>alert(1)</script>`, "Inscrits")
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Inscrits</title>")
	assert.Contains(t, string(page), "<td>Dupont</td>")
	assert.NotContains(t, string(page), "alert(1)")
	assert.Contains(t, string(page), "window.print()")
}

func TestPrintService_PDF(t *testing.T) {
	renderer := new(MockRenderer)
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(html []byte) bool {
		return bytes.Contains(html, []byte("<p>Planning</p>")) && !bytes.Contains(html, []byte("window.print()"))
	})).Return([]byte("%PDF-1.4"), nil)

	s := NewPrintService(view.NewPrinter(""), renderer, nil)
	doc, err := s.PDF(context.Background(), "<p>Planning</p>", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), doc)
	renderer.AssertExpectations(t)
}

func TestPrintService_PDFUnavailable(t *testing.T) {
	s := NewPrintService(view.NewPrinter(""), pdf.New(pdf.Config{Enabled: false}, nil), nil)

	_, err := s.PDF(context.Background(), "<p>x</p>", "")
	assert.ErrorIs(t, err, pdf.ErrUnavailable)
}

func TestPrintService_PDFRenderError(t *testing.T) {
	renderer := new(MockRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("chrome crashed"))

	s := NewPrintService(view.NewPrinter(""), renderer, nil)
	_, err := s.PDF(context.Background(), "<p>x</p>", "")
	assert.ErrorContains(t, err, "chrome crashed")
}
