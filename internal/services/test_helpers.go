package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/geo"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/loginwatch/loginwatch/internal/repositories"
)

// MockAttemptRepository implements AttemptRepository for testing
type MockAttemptRepository struct {
	InsertFunc func(ctx context.Context, attempt *models.LoginAttempt) error
	Inserted   []*models.LoginAttempt
}

func (m *MockAttemptRepository) Insert(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, attempt); err != nil {
			return err
		}
	}
	m.Inserted = append(m.Inserted, attempt)
	return nil
}

// MockAggregateRepository implements AggregateRepository for testing
type MockAggregateRepository struct {
	UpsertOnLoginFunc func(ctx context.Context, up repositories.LoginUpsert) error
	Upserts           []repositories.LoginUpsert
}

func (m *MockAggregateRepository) UpsertOnLogin(ctx context.Context, up repositories.LoginUpsert) error {
	if m.UpsertOnLoginFunc != nil {
		if err := m.UpsertOnLoginFunc(ctx, up); err != nil {
			return err
		}
	}
	m.Upserts = append(m.Upserts, up)
	return nil
}

// MockTrustChecker implements TrustChecker for testing
type MockTrustChecker struct {
	TrustedFingerprints map[string]bool
}

func (m *MockTrustChecker) IsTrusted(ctx context.Context, userID uuid.UUID, fp string) bool {
	return m.TrustedFingerprints[fp]
}

// MockRetryQueue implements UpsertRetryQueue for testing
type MockRetryQueue struct {
	Enqueued []repositories.LoginUpsert
	Full     bool
}

func (m *MockRetryQueue) Enqueue(up repositories.LoginUpsert) bool {
	if m.Full {
		return false
	}
	m.Enqueued = append(m.Enqueued, up)
	return true
}

// MockAlerter implements Alerter for testing
type MockAlerter struct {
	Notified []*models.LoginAttempt
}

func (m *MockAlerter) NotifyCriticalAttempt(attempt *models.LoginAttempt) {
	m.Notified = append(m.Notified, attempt)
}

// MockDeviceRepository implements DeviceRepository for testing
type MockDeviceRepository struct {
	GetByIDFunc                 func(ctx context.Context, id uuid.UUID) (*models.UserDevice, error)
	GetByUserAndFingerprintFunc func(ctx context.Context, userID uuid.UUID, fp string) (*models.UserDevice, error)
	SetTrustedFunc              func(ctx context.Context, deviceID uuid.UUID, trusted bool, actorID uuid.UUID, at time.Time) error
	ListByUserFunc              func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserDevice, error)
	ListFunc                    func(ctx context.Context, limit, offset int) ([]*models.UserDevice, error)
	SetTrustedCalls             int
}

func (m *MockDeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserDevice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockDeviceRepository) GetByUserAndFingerprint(ctx context.Context, userID uuid.UUID, fp string) (*models.UserDevice, error) {
	if m.GetByUserAndFingerprintFunc != nil {
		return m.GetByUserAndFingerprintFunc(ctx, userID, fp)
	}
	return nil, models.ErrNotFound
}

func (m *MockDeviceRepository) SetTrusted(ctx context.Context, deviceID uuid.UUID, trusted bool, actorID uuid.UUID, at time.Time) error {
	m.SetTrustedCalls++
	if m.SetTrustedFunc != nil {
		return m.SetTrustedFunc(ctx, deviceID, trusted, actorID, at)
	}
	return nil
}

func (m *MockDeviceRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserDevice, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return []*models.UserDevice{}, nil
}

func (m *MockDeviceRepository) List(ctx context.Context, limit, offset int) ([]*models.UserDevice, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.UserDevice{}, nil
}

// MockThresholdRepository implements ThresholdRepository for testing
type MockThresholdRepository struct {
	GetFunc  func(ctx context.Context) (models.Thresholds, error)
	SetFunc  func(ctx context.Context, t models.Thresholds, actorID uuid.UUID, at time.Time) error
	SetCalls int
}

func (m *MockThresholdRepository) Get(ctx context.Context) (models.Thresholds, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	return models.DefaultThresholds(), nil
}

func (m *MockThresholdRepository) Set(ctx context.Context, t models.Thresholds, actorID uuid.UUID, at time.Time) error {
	m.SetCalls++
	if m.SetFunc != nil {
		return m.SetFunc(ctx, t, actorID, at)
	}
	return nil
}

// stubGeoProvider returns a fixed location for every lookup
type stubGeoProvider struct {
	LookupFunc func(ctx context.Context, ip string) (*geo.Location, error)
}

func (s *stubGeoProvider) Lookup(ctx context.Context, ip string) (*geo.Location, error) {
	if s.LookupFunc != nil {
		return s.LookupFunc(ctx, ip)
	}
	country := "United States"
	return &geo.Location{Country: &country, Confidence: geo.ConfidenceGood}, nil
}

// NewTestDevice builds a device aggregate for tests
func NewTestDevice(trusted bool) *models.UserDevice {
	now := time.Now().UTC()
	return &models.UserDevice{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		DeviceFingerprint: "a3f5b8c2d1e4f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1",
		IsTrusted:         trusted,
		LoginCount:        3,
		FirstSeenAt:       now.Add(-72 * time.Hour),
		LastSeenAt:        now,
		LastLoginAt:       now,
		RiskLevel:         "minimal",
		DeviceType:        "desktop",
		BrowserName:       "Chrome",
		OSName:            "macOS",
	}
}

func testLogger() *slog.Logger {
	return slog.Default()
}
