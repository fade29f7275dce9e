package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key-for-jwt-signing"

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)
	actorID := uuid.New()

	token, err := tm.Generate(actorID, RoleAdmin)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)

	parsed, err := claims.ActorID()
	assert.NoError(t, err)
	assert.Equal(t, actorID, parsed)
}

func TestValidate_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)
	token, err := tm.Generate(uuid.New(), RoleService)
	assert.NoError(t, err)

	other := NewTokenManager("a-different-secret", 15*time.Minute)
	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestValidate_ExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, -time.Minute)
	token, err := tm.Generate(uuid.New(), RoleService)
	assert.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)

	_, err := tm.Validate("not.a.token")
	assert.Error(t, err)
}

func TestValidate_RoleSurvivesRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute)

	for _, role := range []string{RoleAdmin, RoleService} {
		token, err := tm.Generate(uuid.New(), role)
		assert.NoError(t, err)

		claims, err := tm.Validate(token)
		assert.NoError(t, err)
		assert.Equal(t, role, claims.Role)
	}
}
