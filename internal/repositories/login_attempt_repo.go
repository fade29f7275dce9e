package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/loginwatch/loginwatch/internal/database"
	"github.com/loginwatch/loginwatch/internal/models"
)

// LoginAttemptRepository handles database operations for the append-only
// login_attempts audit table. Rows are inserted exactly once and never
// updated or deleted.
type LoginAttemptRepository struct {
	db *database.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

const loginAttemptColumns = `
	id, user_id, client_fingerprint, network_fingerprint, fingerprint_fallback,
	ip_address, attempted_at, success, failure_reason,
	country, region, city, latitude, longitude, timezone, isp,
	is_vpn, location_confidence, user_agent, login_method,
	risk_score, risk_level, security_flags`

// Insert writes a single immutable audit row. The insert is all-or-nothing;
// the caller owns retry policy.
func (r *LoginAttemptRepository) Insert(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (` + loginAttemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.ClientFingerprint,
		attempt.NetworkFingerprint,
		attempt.FingerprintFallback,
		attempt.IPAddress,
		attempt.AttemptedAt,
		attempt.Success,
		attempt.FailureReason,
		attempt.Country,
		attempt.Region,
		attempt.City,
		attempt.Latitude,
		attempt.Longitude,
		attempt.Timezone,
		attempt.ISP,
		attempt.IsVPN,
		attempt.LocationConfidence,
		attempt.UserAgent,
		attempt.LoginMethod,
		attempt.RiskScore,
		attempt.RiskLevel,
		attempt.SecurityFlags,
	)

	return database.MapPostgresError(err)
}

// List returns audit rows matching the filter, newest first, with the total
// match count for pagination headers.
func (r *LoginAttemptRepository) List(ctx context.Context, filter models.LoginAttemptFilter) ([]*models.LoginAttempt, int64, error) {
	where, args := buildAttemptFilter(filter)

	countQuery := `SELECT COUNT(*) FROM login_attempts` + where
	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + loginAttemptColumns + ` FROM login_attempts` + where +
		` ORDER BY attempted_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, database.MapPostgresError(err)
	}
	defer rows.Close()

	var attempts []*models.LoginAttempt
	for rows.Next() {
		var a models.LoginAttempt
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ClientFingerprint, &a.NetworkFingerprint, &a.FingerprintFallback,
			&a.IPAddress, &a.AttemptedAt, &a.Success, &a.FailureReason,
			&a.Country, &a.Region, &a.City, &a.Latitude, &a.Longitude, &a.Timezone, &a.ISP,
			&a.IsVPN, &a.LocationConfidence, &a.UserAgent, &a.LoginMethod,
			&a.RiskScore, &a.RiskLevel, &a.SecurityFlags,
		); err != nil {
			return nil, 0, database.MapPostgresError(err)
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.MapPostgresError(err)
	}

	return attempts, total, nil
}

// GetByID fetches a single audit row.
func (r *LoginAttemptRepository) GetByID(ctx context.Context, id string) (*models.LoginAttempt, error) {
	query := `SELECT ` + loginAttemptColumns + ` FROM login_attempts WHERE id = $1`

	var a models.LoginAttempt
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.ClientFingerprint, &a.NetworkFingerprint, &a.FingerprintFallback,
		&a.IPAddress, &a.AttemptedAt, &a.Success, &a.FailureReason,
		&a.Country, &a.Region, &a.City, &a.Latitude, &a.Longitude, &a.Timezone, &a.ISP,
		&a.IsVPN, &a.LocationConfidence, &a.UserAgent, &a.LoginMethod,
		&a.RiskScore, &a.RiskLevel, &a.SecurityFlags,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

func buildAttemptFilter(filter models.LoginAttemptFilter) (string, []any) {
	var clauses []string
	var args []any

	addClause := func(column, op string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	if filter.UserID != nil {
		addClause("user_id", "=", *filter.UserID)
	}
	if filter.IPAddress != nil {
		addClause("ip_address", "=", *filter.IPAddress)
	}
	if filter.Success != nil {
		addClause("success", "=", *filter.Success)
	}
	if filter.From != nil {
		addClause("attempted_at", ">=", *filter.From)
	}
	if filter.To != nil {
		addClause("attempted_at", "<=", *filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
