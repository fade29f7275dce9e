package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseAttemptFilter_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/logins", nil)

	filter, err := parseAttemptFilter(req)

	assert.NoError(t, err)
	assert.Nil(t, filter.UserID)
	assert.Nil(t, filter.Success)
	assert.Equal(t, 50, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
}

func TestParseAttemptFilter_AllParameters(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest("GET",
		"/v1/logins?user_id="+userID.String()+"&ip=203.0.113.5&success=false&from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z&limit=25&offset=75", nil)

	filter, err := parseAttemptFilter(req)

	assert.NoError(t, err)
	assert.Equal(t, userID, *filter.UserID)
	assert.Equal(t, "203.0.113.5", *filter.IPAddress)
	assert.False(t, *filter.Success)
	assert.Equal(t, 2026, filter.From.Year())
	assert.Equal(t, 25, filter.Limit)
	assert.Equal(t, 75, filter.Offset)
}

func TestParseAttemptFilter_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad user id", "user_id=nope"},
		{"bad success flag", "success=maybe"},
		{"bad from timestamp", "from=yesterday"},
		{"bad to timestamp", "to=2026-13-45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/logins?"+tt.query, nil)
			_, err := parseAttemptFilter(req)
			assert.ErrorIs(t, err, models.ErrBadRequest)
		})
	}
}

func TestParseAttemptFilter_IgnoresOutOfRangePagination(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/logins?limit=5000&offset=-3", nil)

	filter, err := parseAttemptFilter(req)

	assert.NoError(t, err)
	assert.Equal(t, 50, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
}

func TestLocationDisplay(t *testing.T) {
	s := func(v string) *string { return &v }

	tests := []struct {
		name     string
		attempt  models.LoginAttempt
		expected string
	}{
		{"full location", models.LoginAttempt{City: s("Frankfurt"), Region: s("Hesse"), Country: s("Germany")}, "Frankfurt, Hesse, Germany"},
		{"country only", models.LoginAttempt{Country: s("Germany")}, "Germany"},
		{"empty strings skipped", models.LoginAttempt{City: s(""), Country: s("Germany")}, "Germany"},
		{"nothing resolved", models.LoginAttempt{}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, locationDisplay(&tt.attempt))
		})
	}
}
