package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_MissingHeader(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)
	handler := Middleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/logins", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)
	handler := Middleware(tm)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/logins", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_ValidTokenInjectsClaims(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)
	actorID := uuid.New()
	token, err := tm.Generate(actorID, RoleService)
	assert.NoError(t, err)

	var got *Claims
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromRequest(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(tm)(inner)

	req := httptest.NewRequest(http.MethodGet, "/v1/logins", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, got)
	assert.Equal(t, RoleService, got.Role)
	parsed, err := got.ActorID()
	assert.NoError(t, err)
	assert.Equal(t, actorID, parsed)
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)
	token, err := tm.Generate(uuid.New(), RoleAdmin)
	assert.NoError(t, err)

	handler := Middleware(tm)(RequireRole(RoleAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodPut, "/v1/thresholds", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)
	token, err := tm.Generate(uuid.New(), RoleService)
	assert.NoError(t, err)

	handler := Middleware(tm)(RequireRole(RoleAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodPut, "/v1/thresholds", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_WithoutClaimsIsUnauthorized(t *testing.T) {
	handler := RequireRole(RoleAdmin)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/devices", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
