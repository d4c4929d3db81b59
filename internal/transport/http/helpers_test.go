package http

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "campkit/internal/errors"
	"campkit/internal/middleware"
	"campkit/internal/shared/testutil"
)

type testDeps struct {
	logger       *slog.Logger
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logs         *testutil.BufferedSlogHandler
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	return testDeps{
		logger:       logger,
		validator:    middleware.NewValidator(),
		errorHandler: apierrors.NewErrorHandler(logger, false),
		logs:         logs,
	}
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	require.Contains(t, rec.Header().Get("Content-Type"), "json")
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}
