package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/database"
	"github.com/loginwatch/loginwatch/internal/models"
)

// ThresholdRepository persists the singleton risk_thresholds row.
type ThresholdRepository struct {
	db *database.DB
}

// NewThresholdRepository creates a new ThresholdRepository
func NewThresholdRepository(db *database.DB) *ThresholdRepository {
	return &ThresholdRepository{db: db}
}

// Get reads the active thresholds. A missing row falls back to the defaults
// so a fresh database decides sensibly before the first admin write.
func (r *ThresholdRepository) Get(ctx context.Context) (models.Thresholds, error) {
	query := `SELECT low, medium, high, block, updated_by, updated_at FROM risk_thresholds WHERE id = 1`

	var t models.Thresholds
	err := r.db.Pool.QueryRow(ctx, query).Scan(&t.Low, &t.Medium, &t.High, &t.Block, &t.UpdatedBy, &t.UpdatedAt)
	if err != nil {
		if errors.Is(database.MapPostgresError(err), models.ErrNotFound) {
			return models.DefaultThresholds(), nil
		}
		return models.Thresholds{}, database.MapPostgresError(err)
	}
	return t, nil
}

// Set replaces the singleton row in one statement so readers never observe a
// partially-updated set.
func (r *ThresholdRepository) Set(ctx context.Context, t models.Thresholds, actorID uuid.UUID, at time.Time) error {
	query := `
		INSERT INTO risk_thresholds (id, low, medium, high, block, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			low = EXCLUDED.low,
			medium = EXCLUDED.medium,
			high = EXCLUDED.high,
			block = EXCLUDED.block,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Pool.Exec(ctx, query, t.Low, t.Medium, t.High, t.Block, actorID, at)
	return database.MapPostgresError(err)
}
