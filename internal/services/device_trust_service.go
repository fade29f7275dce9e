package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/models"
	pkglogger "github.com/loginwatch/loginwatch/pkg/logger"
)

// DeviceRepository defines the persistence operations the trust service needs.
type DeviceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserDevice, error)
	GetByUserAndFingerprint(ctx context.Context, userID uuid.UUID, fp string) (*models.UserDevice, error)
	SetTrusted(ctx context.Context, deviceID uuid.UUID, trusted bool, actorID uuid.UUID, at time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserDevice, error)
	List(ctx context.Context, limit, offset int) ([]*models.UserDevice, error)
}

// DeviceTrustService owns the Untrusted <-> Trusted state machine. The trust
// flag moves only on explicit admin/policy calls, never from login activity
// or risk scores, and every transition is attributed.
type DeviceTrustService struct {
	repo        DeviceRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewDeviceTrustService creates a new DeviceTrustService
func NewDeviceTrustService(repo DeviceRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *DeviceTrustService {
	return &DeviceTrustService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Trust marks a device trusted. Idempotent: trusting an already-trusted
// device is a no-op success and records no duplicate side effects.
func (s *DeviceTrustService) Trust(ctx context.Context, deviceID, actorID uuid.UUID) (*models.UserDevice, error) {
	return s.setTrust(ctx, deviceID, actorID, true)
}

// Untrust marks a device untrusted. Idempotent like Trust.
func (s *DeviceTrustService) Untrust(ctx context.Context, deviceID, actorID uuid.UUID) (*models.UserDevice, error) {
	return s.setTrust(ctx, deviceID, actorID, false)
}

func (s *DeviceTrustService) setTrust(ctx context.Context, deviceID, actorID uuid.UUID, trusted bool) (*models.UserDevice, error) {
	device, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if device.IsTrusted == trusted {
		return device, nil
	}

	now := time.Now().UTC()
	if err := s.repo.SetTrusted(ctx, deviceID, trusted, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to update device trust: %w", err)
	}

	device.IsTrusted = trusted
	device.TrustChangedBy = &actorID
	device.TrustChangedAt = &now

	s.logger.Info("device trust changed",
		slog.String("device_id", deviceID.String()),
		slog.String("actor_id", actorID.String()),
		slog.Bool("is_trusted", trusted),
	)
	s.auditLogger.LogTrustChange(deviceID.String(), actorID.String(), trusted)

	return device, nil
}

// IsTrusted reports whether the (user, fingerprint) pair maps to a trusted
// device. Unknown devices are untrusted; lookup errors degrade to untrusted
// rather than failing the caller.
func (s *DeviceTrustService) IsTrusted(ctx context.Context, userID uuid.UUID, fp string) bool {
	device, err := s.repo.GetByUserAndFingerprint(ctx, userID, fp)
	if err != nil {
		return false
	}
	return device.IsTrusted
}

// Get fetches a single device aggregate.
func (s *DeviceTrustService) Get(ctx context.Context, deviceID uuid.UUID) (*models.UserDevice, error) {
	return s.repo.GetByID(ctx, deviceID)
}

// ListForUser returns a user's devices for the admin dashboard.
func (s *DeviceTrustService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserDevice, error) {
	return s.repo.ListByUser(ctx, userID, clampLimit(limit), clampOffset(offset))
}

// List returns device aggregates across users.
func (s *DeviceTrustService) List(ctx context.Context, limit, offset int) ([]*models.UserDevice, error) {
	return s.repo.List(ctx, clampLimit(limit), clampOffset(offset))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
