package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newContext creates an echo.Context backed by an httptest.NewRecorder.
func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// parseBody unmarshals the recorder body into an ErrorResponse.
func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// captureLog redirects the standard logger to a buffer for the duration of fn
// and returns everything that was logged.
func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)
	fn()
	return buf.String()
}

func TestValidationError_DomainMessageExposed(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/clients/daily-plan?limit=abc")
	err := ValidationError(c, domain.NewValidationError("limit must be an integer"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := parseBody(t, rec)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "limit must be an integer", resp.Message)
}

func TestValidationError_NoInternalDetails(t *testing.T) {
	internalMsg := "Key: 'LogInteractionRequest.Type' Error:Field validation for 'Type' failed on the 'required' tag"
	c, rec := newContext(http.MethodPost, "/api/v1/clients/1/interactions")
	_ = ValidationError(c, errors.New(internalMsg))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "LogInteractionRequest")
	assert.NotEmpty(t, parseBody(t, rec).Message)
}

func TestValidationError_LogsInternalError(t *testing.T) {
	output := captureLog(func() {
		c, _ := newContext(http.MethodPost, "/api/v1/clients/1/interactions")
		_ = ValidationError(c, errors.New("tipo is required"))
	})
	assert.Contains(t, output, "[VALIDATION ERROR]")
	assert.Contains(t, output, "/api/v1/clients/1/interactions")
	assert.Contains(t, output, "tipo is required")
}

func TestDatabaseError(t *testing.T) {
	internalMsg := "pq: relation \"clients\" does not exist"
	var rec *httptest.ResponseRecorder
	output := captureLog(func() {
		var c echo.Context
		c, rec = newContext(http.MethodGet, "/api/v1/clients/1/intelligence")
		_ = DatabaseError(c, errors.New(internalMsg))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "database_error", parseBody(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, output, internalMsg)
}

func TestInternalError(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/engine/recompute")
	_ = InternalError(c, errors.New("redis: connection pool timeout"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", parseBody(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "redis")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func TestNotFoundError(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/clients/999/intelligence")
	_ = NotFoundError(c, "client")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", parseBody(t, rec).Error)
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.NewNotFoundError("client"), http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("load: %w", domain.NewNotFoundError("client")), http.StatusNotFound, "not_found"},
		{"validation", domain.NewValidationError("bad limit"), http.StatusBadRequest, "validation_error"},
		{"invalid input", domain.NewInvalidInputError("client id must be positive"), http.StatusBadRequest, "invalid_input"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/")
			require.NoError(t, FromDomain(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, parseBody(t, rec).Error)
		})
	}
}

func TestInternalError_ReportsToSentry(t *testing.T) {
	var mu sync.Mutex
	var events []*sentry.Event

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil // drop instead of sending
		},
	})
	require.NoError(t, err)
	hub := sentry.NewHub(client, sentry.NewScope())

	c, rec := newContext(http.MethodGet, "/api/v1/clients/daily-plan")
	sentryecho.SetHubOnContext(c, hub)

	require.NoError(t, InternalError(c, errors.New("scoring failed")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "scoring failed", events[0].Exception[0].Value)
}

func TestCapture_NoHub(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	assert.NotPanics(t, func() { _ = InternalError(c, errors.New("x")) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
