package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/fingerprint"
	"github.com/loginwatch/loginwatch/internal/geo"
	"github.com/loginwatch/loginwatch/internal/metrics"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/loginwatch/loginwatch/internal/repositories"
	"github.com/loginwatch/loginwatch/internal/risk"
	"github.com/loginwatch/loginwatch/internal/useragent"
	pkglogger "github.com/loginwatch/loginwatch/pkg/logger"
)

// AttemptRepository defines the audit-row persistence the recorder needs.
type AttemptRepository interface {
	Insert(ctx context.Context, attempt *models.LoginAttempt) error
}

// AggregateRepository defines the UserDevice upsert the recorder triggers.
type AggregateRepository interface {
	UpsertOnLogin(ctx context.Context, up repositories.LoginUpsert) error
}

// TrustChecker reports whether a (user, fingerprint) pair is trusted.
type TrustChecker interface {
	IsTrusted(ctx context.Context, userID uuid.UUID, fp string) bool
}

// UpsertRetryQueue accepts aggregate upserts that failed inline and retries
// them in the background.
type UpsertRetryQueue interface {
	Enqueue(up repositories.LoginUpsert) bool
}

// Alerter receives critical-risk attempts for best-effort notification.
type Alerter interface {
	NotifyCriticalAttempt(attempt *models.LoginAttempt)
}

// RecordInput is the request context for a single authentication event.
type RecordInput struct {
	UserID         *uuid.UUID
	IPAddress      string
	UserAgent      string
	AcceptLanguage string
	// ClientFingerprintID is the client-computed hash, advisory until its
	// shape is validated. ClientComponents, when present, lets the server
	// recompute the hash and derive anomaly flags itself.
	ClientFingerprintID string
	ClientComponents    map[string]any
	Success             bool
	FailureReason       *string
	LoginMethod         string
}

// RecordResult is what the auth flow consumes to decide allow/challenge/block.
type RecordResult struct {
	Attempt   *models.LoginAttempt
	RiskScore float64
	RiskLevel risk.Level
	Outcome   risk.Outcome
}

// RecorderService orchestrates a login event: fingerprint derivation,
// geolocation enrichment, risk scoring, the immutable audit insert, and the
// UserDevice aggregation. Authentication is never blocked by telemetry: audit
// and aggregate failures are logged and absorbed here.
type RecorderService struct {
	attempts   AttemptRepository
	aggregates AggregateRepository
	trust      TrustChecker
	resolver   *geo.Resolver
	scorer     *risk.Scorer
	thresholds *ThresholdService
	retryQueue UpsertRetryQueue
	alerter    Alerter

	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	metrics     *metrics.Metrics
}

// NewRecorderService creates a new RecorderService. retryQueue and alerter
// may be nil; the corresponding behavior is skipped.
func NewRecorderService(
	attempts AttemptRepository,
	aggregates AggregateRepository,
	trust TrustChecker,
	resolver *geo.Resolver,
	scorer *risk.Scorer,
	thresholds *ThresholdService,
	retryQueue UpsertRetryQueue,
	alerter Alerter,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	m *metrics.Metrics,
) *RecorderService {
	return &RecorderService{
		attempts:    attempts,
		aggregates:  aggregates,
		trust:       trust,
		resolver:    resolver,
		scorer:      scorer,
		thresholds:  thresholds,
		retryQueue:  retryQueue,
		alerter:     alerter,
		logger:      logger,
		auditLogger: auditLogger,
		metrics:     m,
	}
}

// Record processes one authentication event and returns the attempt with its
// score, level, and decision. It returns an error only for malformed input;
// storage failures are absorbed per the availability-over-completeness
// trade-off.
func (s *RecorderService) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	if in.IPAddress == "" {
		return nil, models.ErrBadRequest
	}

	now := time.Now().UTC()

	networkFP := fingerprint.DeriveNetwork(in.IPAddress, in.UserAgent, in.AcceptLanguage)
	clientFP, fingerprintFallback, anomalies := s.clientFingerprint(in)

	location := s.resolveLocation(ctx, in.IPAddress)

	deviceFP := networkFP
	if clientFP != nil {
		deviceFP = *clientFP
	}

	trusted := false
	if in.UserID != nil {
		trusted = s.trust.IsTrusted(ctx, *in.UserID, deviceFP)
	}

	score := s.scorer.Score(risk.Input{
		Success:         in.Success,
		UserAgent:       in.UserAgent,
		Location:        location,
		Anomalies:       anomalies,
		IsTrustedDevice: trusted,
	})
	level := risk.LevelFor(score)

	attempt := &models.LoginAttempt{
		ID:                  uuid.New(),
		UserID:              in.UserID,
		ClientFingerprint:   clientFP,
		NetworkFingerprint:  networkFP,
		FingerprintFallback: fingerprintFallback,
		IPAddress:           in.IPAddress,
		AttemptedAt:         now,
		Success:             in.Success,
		FailureReason:       in.FailureReason,
		Country:             location.Country,
		Region:              location.Region,
		City:                location.City,
		Latitude:            location.Latitude,
		Longitude:           location.Longitude,
		Timezone:            location.Timezone,
		ISP:                 location.ISP,
		IsVPN:               location.IsVPN,
		LocationConfidence:  location.Confidence,
		UserAgent:           in.UserAgent,
		LoginMethod:         in.LoginMethod,
		RiskScore:           score,
		RiskLevel:           level.String(),
		SecurityFlags:       anomalies,
	}

	s.insertAttempt(ctx, attempt)

	if in.Success && in.UserID != nil {
		s.updateAggregate(ctx, attempt, deviceFP, now)
	}

	thresholds := s.thresholds.Get()
	outcome := risk.Decide(score, thresholds)

	if s.metrics != nil {
		s.metrics.AttemptsRecorded.WithLabelValues(string(outcome), level.String()).Inc()
		s.metrics.RiskScore.Observe(score)
	}

	event := pkglogger.LoginEvent{
		AttemptID:   attempt.ID.String(),
		IPAddress:   pkglogger.TruncatedIP(in.IPAddress),
		Fingerprint: deviceFP,
		Success:     in.Success,
		RiskScore:   score,
		RiskLevel:   level.String(),
	}
	if in.UserID != nil {
		event.UserID = in.UserID.String()
	}
	if in.FailureReason != nil {
		event.FailureReason = *in.FailureReason
	}
	s.auditLogger.LogLoginRecorded(event)

	if level == risk.LevelCritical && s.alerter != nil {
		s.alerter.NotifyCriticalAttempt(attempt)
	}

	return &RecordResult{
		Attempt:   attempt,
		RiskScore: score,
		RiskLevel: level,
		Outcome:   outcome,
	}, nil
}

// clientFingerprint validates the client-supplied signal. A full component
// map is recomputed server-side; a bare hash is accepted only when its shape
// checks out. Anything else is dropped without failing the attempt.
func (s *RecorderService) clientFingerprint(in RecordInput) (*string, bool, []string) {
	if len(in.ClientComponents) > 0 {
		fp, err := fingerprint.FromComponents(in.ClientComponents)
		if err != nil {
			s.logger.Warn("rejected client fingerprint components", slog.Any("error", err))
			return nil, false, nil
		}
		return &fp.ID, fp.Fallback, fingerprint.Anomalies(fp)
	}

	if in.ClientFingerprintID != "" && fingerprint.ValidID(in.ClientFingerprintID) {
		id := in.ClientFingerprintID
		return &id, false, nil
	}

	return nil, false, nil
}

func (s *RecorderService) resolveLocation(ctx context.Context, ip string) *geo.Location {
	start := time.Now()
	location := s.resolver.Resolve(ctx, ip)

	if s.metrics != nil {
		s.metrics.GeoLookupDuration.Observe(time.Since(start).Seconds())
		if location.Confidence <= geo.ConfidenceLow {
			s.metrics.GeoLookupFailures.Inc()
		}
	}
	return location
}

// insertAttempt writes the audit row with one inline retry. The write runs on
// a context detached from the request so an upstream cancellation cannot
// abandon it mid-flight; failures are logged and swallowed so authentication
// proceeds.
func (s *RecorderService) insertAttempt(ctx context.Context, attempt *models.LoginAttempt) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.attempts.Insert(writeCtx, attempt)
	if err != nil {
		err = s.attempts.Insert(writeCtx, attempt)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.AuditWriteErrors.Inc()
		}
		s.logger.Error("audit write failed, attempt not persisted",
			slog.String("attempt_id", attempt.ID.String()),
			slog.Any("error", err),
		)
	}
}

// updateAggregate upserts the UserDevice row; a failure is queued for
// at-least-once background retry and never fails the login.
func (s *RecorderService) updateAggregate(ctx context.Context, attempt *models.LoginAttempt, deviceFP string, now time.Time) {
	up := repositories.LoginUpsert{
		UserID:            *attempt.UserID,
		DeviceFingerprint: deviceFP,
		SeenAt:            now,
		RiskScore:         attempt.RiskScore,
		RiskLevel:         attempt.RiskLevel,
		Classification:    models.DeviceClassification(useragent.Classify(attempt.UserAgent)),
		SecurityFlags:     attempt.SecurityFlags,
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.aggregates.UpsertOnLogin(writeCtx, up); err != nil {
		s.logger.Error("device aggregate upsert failed, queueing retry",
			slog.String("user_id", up.UserID.String()),
			slog.Any("error", err),
		)
		if s.retryQueue != nil {
			if queued := s.retryQueue.Enqueue(up); queued && s.metrics != nil {
				s.metrics.UpsertRetryQueued.Inc()
			}
		}
	}
}
