package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/database"
	"github.com/loginwatch/loginwatch/internal/models"
)

// UserDeviceRepository maintains the per-(user, fingerprint) aggregate.
type UserDeviceRepository struct {
	db *database.DB
}

// NewUserDeviceRepository creates a new UserDeviceRepository
func NewUserDeviceRepository(db *database.DB) *UserDeviceRepository {
	return &UserDeviceRepository{db: db}
}

const userDeviceColumns = `
	id, user_id, device_fingerprint, is_trusted, trust_changed_by, trust_changed_at,
	login_count, first_seen_at, last_seen_at, last_login_at,
	risk_score, risk_level, device_type, browser_name, os_name, security_flags`

// LoginUpsert carries the refresh values applied to the aggregate on a
// successful login.
type LoginUpsert struct {
	UserID            uuid.UUID
	DeviceFingerprint string
	SeenAt            time.Time
	RiskScore         float64
	RiskLevel         string
	Classification    models.DeviceClassification
	SecurityFlags     []string
}

// UpsertOnLogin creates the aggregate row on the first successful login for a
// fingerprint, or atomically increments its counter and refreshes its cached
// risk on subsequent ones. The increment happens inside the single statement
// so concurrent logins from the same device never lose an update.
func (r *UserDeviceRepository) UpsertOnLogin(ctx context.Context, up LoginUpsert) error {
	query := `
		INSERT INTO user_devices (
			id, user_id, device_fingerprint, login_count,
			first_seen_at, last_seen_at, last_login_at,
			risk_score, risk_level, device_type, browser_name, os_name, security_flags
		)
		VALUES ($1, $2, $3, 1, $4, $4, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, device_fingerprint) DO UPDATE SET
			login_count    = user_devices.login_count + 1,
			last_seen_at   = EXCLUDED.last_seen_at,
			last_login_at  = EXCLUDED.last_login_at,
			risk_score     = EXCLUDED.risk_score,
			risk_level     = EXCLUDED.risk_level,
			device_type    = EXCLUDED.device_type,
			browser_name   = EXCLUDED.browser_name,
			os_name        = EXCLUDED.os_name,
			security_flags = EXCLUDED.security_flags
	`

	_, err := r.db.Pool.Exec(ctx, query,
		uuid.New(),
		up.UserID,
		up.DeviceFingerprint,
		up.SeenAt,
		up.RiskScore,
		up.RiskLevel,
		up.Classification.DeviceType,
		up.Classification.BrowserName,
		up.Classification.OSName,
		up.SecurityFlags,
	)
	return database.MapPostgresError(err)
}

// SetTrusted flips the trust flag with attribution. The write is idempotent:
// setting the flag to its current value still records who asked and when.
func (r *UserDeviceRepository) SetTrusted(ctx context.Context, deviceID uuid.UUID, trusted bool, actorID uuid.UUID, at time.Time) error {
	query := `
		UPDATE user_devices
		SET is_trusted = $2, trust_changed_by = $3, trust_changed_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, deviceID, trusted, actorID, at)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByID fetches a single aggregate row.
func (r *UserDeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserDevice, error) {
	query := `SELECT ` + userDeviceColumns + ` FROM user_devices WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByUserAndFingerprint fetches the aggregate row for an attempt's device.
func (r *UserDeviceRepository) GetByUserAndFingerprint(ctx context.Context, userID uuid.UUID, fp string) (*models.UserDevice, error) {
	query := `SELECT ` + userDeviceColumns + ` FROM user_devices WHERE user_id = $1 AND device_fingerprint = $2`
	return r.scanOne(ctx, query, userID, fp)
}

// ListByUser returns a user's devices, most recently seen first.
func (r *UserDeviceRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserDevice, error) {
	query := `
		SELECT ` + userDeviceColumns + `
		FROM user_devices
		WHERE user_id = $1
		ORDER BY last_seen_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.scanMany(ctx, query, userID, limit, offset)
}

// List returns aggregate rows across all users for the admin dashboard.
func (r *UserDeviceRepository) List(ctx context.Context, limit, offset int) ([]*models.UserDevice, error) {
	query := `
		SELECT ` + userDeviceColumns + `
		FROM user_devices
		ORDER BY last_seen_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.scanMany(ctx, query, limit, offset)
}

func (r *UserDeviceRepository) scanOne(ctx context.Context, query string, args ...any) (*models.UserDevice, error) {
	var d models.UserDevice
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&d.ID, &d.UserID, &d.DeviceFingerprint, &d.IsTrusted, &d.TrustChangedBy, &d.TrustChangedAt,
		&d.LoginCount, &d.FirstSeenAt, &d.LastSeenAt, &d.LastLoginAt,
		&d.RiskScore, &d.RiskLevel, &d.DeviceType, &d.BrowserName, &d.OSName, &d.SecurityFlags,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &d, nil
}

func (r *UserDeviceRepository) scanMany(ctx context.Context, query string, args ...any) ([]*models.UserDevice, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	var devices []*models.UserDevice
	for rows.Next() {
		var d models.UserDevice
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.DeviceFingerprint, &d.IsTrusted, &d.TrustChangedBy, &d.TrustChangedAt,
			&d.LoginCount, &d.FirstSeenAt, &d.LastSeenAt, &d.LastLoginAt,
			&d.RiskScore, &d.RiskLevel, &d.DeviceType, &d.BrowserName, &d.OSName, &d.SecurityFlags,
		); err != nil {
			return nil, database.MapPostgresError(err)
		}
		devices = append(devices, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return devices, nil
}
