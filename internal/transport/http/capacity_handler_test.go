package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campkit/internal/backend"
)

// MockCapacityChecker is a mock implementation of CapacityChecker
type MockCapacityChecker struct {
	mock.Mock
}

func (m *MockCapacityChecker) CheckCapacity(ctx context.Context, activityID int) *backend.Capacity {
	args := m.Called(ctx, activityID)
	c, _ := args.Get(0).(*backend.Capacity)
	return c
}

func intPtr(v int) *int { return &v }

func newCapacityRouter(t *testing.T, checker CapacityChecker) chi.Router {
	t.Helper()
	d := newTestDeps(t)
	r := chi.NewRouter()
	r.Mount("/api/activities", NewCapacityHandler(checker, d.logger, d.errorHandler).Routes())
	return r
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCapacityHandler_GetCapacity(t *testing.T) {
	checker := new(MockCapacityChecker)
	checker.On("CheckCapacity", mock.Anything, 7).Return(&backend.Capacity{
		Success:             true,
		IsFull:              false,
		AvailableSpots:      intPtr(4),
		TotalCapacity:       intPtr(20),
		CurrentParticipants: 16,
	})

	rec := get(newCapacityRouter(t, checker), "/api/activities/7/capacity")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 4, body["available_spots"])
	assert.EqualValues(t, 16, body["current_participants"])
	checker.AssertExpectations(t)
}

func TestCapacityHandler_BackendUnavailable(t *testing.T) {
	checker := new(MockCapacityChecker)
	checker.On("CheckCapacity", mock.Anything, 7).Return(nil)

	rec := get(newCapacityRouter(t, checker), "/api/activities/7/capacity")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "/errors/backend/unavailable", problem["type"])
	assert.EqualValues(t, 7, problem["activity_id"])
}

func TestCapacityHandler_InvalidID(t *testing.T) {
	checker := new(MockCapacityChecker)
	router := newCapacityRouter(t, checker)

	for _, id := range []string{"abc", "0", "-3"} {
		rec := get(router, "/api/activities/"+id+"/capacity")
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
	checker.AssertNotCalled(t, "CheckCapacity", mock.Anything, mock.Anything)
}

func TestCapacityHandler_GetBadge(t *testing.T) {
	tests := []struct {
		name     string
		capacity *backend.Capacity
		want     string
	}{
		{
			name:     "spots left",
			capacity: &backend.Capacity{Success: true, AvailableSpots: intPtr(3), TotalCapacity: intPtr(12), CurrentParticipants: 9},
			want:     `<span class="badge badge-green">Places disponibles: 3</span>`,
		},
		{
			name:     "full",
			capacity: &backend.Capacity{Success: true, IsFull: true, AvailableSpots: intPtr(0), TotalCapacity: intPtr(12), CurrentParticipants: 12},
			want:     `<span class="badge badge-red">Complet (12/12)</span>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockCapacityChecker)
			checker.On("CheckCapacity", mock.Anything, 3).Return(tt.capacity)

			rec := get(newCapacityRouter(t, checker), "/api/activities/3/capacity/badge")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestCapacityHandler_BadgeUnavailableLeavesPageAlone(t *testing.T) {
	checker := new(MockCapacityChecker)
	checker.On("CheckCapacity", mock.Anything, 3).Return(nil)

	rec := get(newCapacityRouter(t, checker), "/api/activities/3/capacity/badge")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
