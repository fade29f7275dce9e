package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/models"
	pkglogger "github.com/loginwatch/loginwatch/pkg/logger"
)

// ThresholdRepository defines the persistence operations for the singleton
// thresholds row.
type ThresholdRepository interface {
	Get(ctx context.Context) (models.Thresholds, error)
	Set(ctx context.Context, t models.Thresholds, actorID uuid.UUID, at time.Time) error
}

// ThresholdService serves the admin-tunable decision cutovers. Reads come
// from an atomically swapped in-memory copy so the hot login path never waits
// on the database; the copy is replaced on every admin write.
type ThresholdService struct {
	repo        ThresholdRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	// writeMu serializes persist+swap so the active copy always reflects
	// the last row written to the database.
	writeMu sync.Mutex
	active  atomic.Pointer[models.Thresholds]
}

// NewThresholdService loads the active thresholds and returns the service.
// A load failure falls back to defaults rather than refusing to start: the
// decision point must always have a usable configuration.
func NewThresholdService(ctx context.Context, repo ThresholdRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ThresholdService {
	s := &ThresholdService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}

	t, err := repo.Get(ctx)
	if err != nil {
		logger.Error("failed to load risk thresholds, using defaults", slog.Any("error", err))
		t = models.DefaultThresholds()
	}
	s.active.Store(&t)

	return s
}

// Get returns the active thresholds. Never blocks on I/O.
func (s *ThresholdService) Get() models.Thresholds {
	return *s.active.Load()
}

// Set validates the ordering invariant, persists the new configuration, and
// swaps the active copy. On validation failure the configuration is unchanged
// and the error describes the violated constraint.
func (s *ThresholdService) Set(ctx context.Context, t models.Thresholds, actorID uuid.UUID) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := time.Now().UTC()
	t.UpdatedBy = &actorID
	t.UpdatedAt = now

	if err := s.repo.Set(ctx, t, actorID, now); err != nil {
		return fmt.Errorf("failed to persist thresholds: %w", err)
	}

	s.active.Store(&t)

	s.logger.Info("risk thresholds updated",
		slog.Float64("low", t.Low),
		slog.Float64("medium", t.Medium),
		slog.Float64("high", t.High),
		slog.Float64("block", t.Block),
		slog.String("actor_id", actorID.String()),
	)
	s.auditLogger.LogThresholdChange(actorID.String(), t.Low, t.Medium, t.High, t.Block)

	return nil
}
