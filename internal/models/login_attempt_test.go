package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLoginMethod(t *testing.T) {
	tests := []struct {
		method   string
		expected bool
	}{
		{"password", true},
		{"passkey", true},
		{"oauth_google", true},
		{"oauth_github", true},
		{"oauth_x", true},
		{"oauth", false},
		{"oauth_", false},
		{"oauthgoogle", false},
		{"sms", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidLoginMethod(tt.method))
		})
	}
}

func TestDeviceFingerprint_PrefersClientFingerprint(t *testing.T) {
	client := "a3f5b8c2d1e4f6a7"
	attempt := LoginAttempt{
		ClientFingerprint:  &client,
		NetworkFingerprint: "ffeeddccbbaa9988",
	}

	assert.Equal(t, client, attempt.DeviceFingerprint())

	attempt.ClientFingerprint = nil
	assert.Equal(t, "ffeeddccbbaa9988", attempt.DeviceFingerprint())

	empty := ""
	attempt.ClientFingerprint = &empty
	assert.Equal(t, "ffeeddccbbaa9988", attempt.DeviceFingerprint())
}
