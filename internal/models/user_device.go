package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDevice is the per-(user, fingerprint) aggregate derived from the
// LoginAttempt stream. One row per user+fingerprint, created on the first
// successful login and updated on every subsequent one. The trust flag is
// never touched by login activity; only explicit admin/policy action moves it.
type UserDevice struct {
	ID                uuid.UUID  `db:"id"`
	UserID            uuid.UUID  `db:"user_id"`
	DeviceFingerprint string     `db:"device_fingerprint"`
	IsTrusted         bool       `db:"is_trusted"`
	TrustChangedBy    *uuid.UUID `db:"trust_changed_by"`
	TrustChangedAt    *time.Time `db:"trust_changed_at"`
	LoginCount        int        `db:"login_count"`
	FirstSeenAt       time.Time  `db:"first_seen_at"`
	LastSeenAt        time.Time  `db:"last_seen_at"`
	LastLoginAt       time.Time  `db:"last_login_at"`
	RiskScore         float64    `db:"risk_score"`
	RiskLevel         string     `db:"risk_level"`
	DeviceType        string     `db:"device_type"`
	BrowserName       string     `db:"browser_name"`
	OSName            string     `db:"os_name"`
	SecurityFlags     []string   `db:"security_flags"`
}

// DeviceClassification is the cached user-agent classification stored on the
// aggregate for display purposes.
type DeviceClassification struct {
	DeviceType  string
	BrowserName string
	OSName      string
}
