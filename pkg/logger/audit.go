package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditLogger emits structured security-audit events alongside the durable
// audit rows. Log lines are observability; the login_attempts table is the
// record of truth.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LoginEvent describes a recorded authentication attempt.
type LoginEvent struct {
	AttemptID     string
	UserID        string
	IPAddress     string
	Fingerprint   string
	Success       bool
	FailureReason string
	RiskScore     float64
	RiskLevel     string
}

// LogLoginRecorded logs a recorded login attempt.
func (al *AuditLogger) LogLoginRecorded(event LoginEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "login"),
		slog.String("attempt_id", event.AttemptID),
		slog.Bool("success", event.Success),
		slog.Float64("risk_score", event.RiskScore),
		slog.String("risk_level", event.RiskLevel),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.Fingerprint != "" {
		attrs = append(attrs, slog.String("device_fingerprint", event.Fingerprint))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success || event.RiskLevel == "critical" {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogTrustChange logs an explicit admin/policy trust transition.
func (al *AuditLogger) LogTrustChange(deviceID, actorID string, trusted bool) {
	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit",
		slog.String("audit_type", "device_trust"),
		slog.String("device_id", deviceID),
		slog.String("actor_id", actorID),
		slog.Bool("is_trusted", trusted),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

// LogThresholdChange logs an admin threshold update.
func (al *AuditLogger) LogThresholdChange(actorID string, low, medium, high, block float64) {
	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit",
		slog.String("audit_type", "thresholds"),
		slog.String("actor_id", actorID),
		slog.Float64("low", low),
		slog.Float64("medium", medium),
		slog.Float64("high", high),
		slog.Float64("block", block),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}
