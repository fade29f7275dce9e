package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Login methods accepted on a recorded attempt. OAuth methods are
// provider-qualified (oauth_google, oauth_github, ...) and recorded verbatim.
const (
	LoginMethodPassword    = "password"
	LoginMethodPasskey     = "passkey"
	LoginMethodOAuthPrefix = "oauth_"
)

// ValidLoginMethod reports whether m is an accepted login method.
func ValidLoginMethod(m string) bool {
	switch m {
	case LoginMethodPassword, LoginMethodPasskey:
		return true
	}
	return strings.HasPrefix(m, LoginMethodOAuthPrefix) && len(m) > len(LoginMethodOAuthPrefix)
}

// Failure reasons recorded on unsuccessful attempts
const (
	FailureReasonBadCredentials  = "bad_credentials"
	FailureReasonAccountLocked   = "account_locked"
	FailureReasonAccountDisabled = "account_disabled"
	FailureReasonMFARequired     = "mfa_required"
	FailureReasonUnknownUser     = "unknown_user"
)

// LoginAttempt is a single immutable audit record of an authentication event.
// Rows are append-only: never updated, never deleted.
type LoginAttempt struct {
	ID                  uuid.UUID  `db:"id"`
	UserID              *uuid.UUID `db:"user_id"`
	ClientFingerprint   *string    `db:"client_fingerprint"`
	NetworkFingerprint  string     `db:"network_fingerprint"`
	FingerprintFallback bool       `db:"fingerprint_fallback"`
	IPAddress           string     `db:"ip_address"`
	AttemptedAt         time.Time  `db:"attempted_at"`
	Success             bool       `db:"success"`
	FailureReason       *string    `db:"failure_reason"`
	Country             *string    `db:"country"`
	Region              *string    `db:"region"`
	City                *string    `db:"city"`
	Latitude            *float64   `db:"latitude"`
	Longitude           *float64   `db:"longitude"`
	Timezone            *string    `db:"timezone"`
	ISP                 *string    `db:"isp"`
	IsVPN               bool       `db:"is_vpn"`
	LocationConfidence  float64    `db:"location_confidence"`
	UserAgent           string     `db:"user_agent"`
	LoginMethod         string     `db:"login_method"`
	RiskScore           float64    `db:"risk_score"`
	RiskLevel           string     `db:"risk_level"`
	SecurityFlags       []string   `db:"security_flags"`
}

// DeviceFingerprint returns the fingerprint that keys the UserDevice aggregate:
// the client-supplied fingerprint when one was accepted, the server-derived
// network fingerprint otherwise.
func (a *LoginAttempt) DeviceFingerprint() string {
	if a.ClientFingerprint != nil && *a.ClientFingerprint != "" {
		return *a.ClientFingerprint
	}
	return a.NetworkFingerprint
}

// LoginAttemptFilter narrows admin history queries.
type LoginAttemptFilter struct {
	UserID    *uuid.UUID
	IPAddress *string
	Success   *bool
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
