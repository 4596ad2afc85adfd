package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcast/roadcast/internal/api/models"
)

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	).WithDetail("days must be a number").
		WithInstance("/v1/weather/colombo/transport-forecast").
		WithErrors([]models.FieldError{{Field: "days", Message: "must be a number", Code: "NUMBER"}})

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Equal(t, "days must be a number", p.Detail)
	assert.Equal(t, "/v1/weather/colombo/transport-forecast", p.Instance)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "NUMBER", p.Errors[0].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid query", []models.FieldError{
		{Field: "origin", Message: "is required"},
	})
	p.Instance = "/v1/routes/weather"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "invalid query", result.Detail)
	assert.Equal(t, "/v1/routes/weather", result.Instance)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "origin", result.Errors[0].Field)
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name     string
		problem  *models.Problem
		wantType string
		title    string
		status   int
	}{
		{"bad request", models.NewBadRequest("req_1", "bad", nil), models.ProblemTypeValidation, "Validation error", http.StatusBadRequest},
		{"unauthorized", models.NewUnauthorized("req_1", "token expired"), models.ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized},
		{"forbidden", models.NewForbidden("req_1", "missing scope"), models.ProblemTypeForbidden, "Forbidden", http.StatusForbidden},
		{"not found", models.NewNotFound("req_1", "unknown location"), models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{"too many requests", models.NewTooManyRequests("req_1", "slow down"), models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{"internal", models.NewInternalError("req_1", "boom"), models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{"unavailable", models.NewServiceUnavailable("req_1", "upstream down"), models.ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.title, tt.problem.Title)
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.Equal(t, "req_1", tt.problem.TraceID)
			assert.NotEmpty(t, tt.problem.Detail)
		})
	}
}

func TestTimestamp_JSON(t *testing.T) {
	ts := models.Timestamp(time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("IST", 19800)))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-03-01T04:00:00Z"`, string(data))

	var decoded models.Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, ts.Time().Equal(decoded.Time()))
}

func TestTimestampPtr(t *testing.T) {
	assert.Nil(t, models.TimestampPtr(nil))

	now := time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)
	got := models.TimestampPtr(&now)
	require.NotNil(t, got)
	assert.Equal(t, now, got.Time())
}
