package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/models"
	pkglogger "github.com/loginwatch/loginwatch/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func newTrustService(repo *MockDeviceRepository) *DeviceTrustService {
	logger := testLogger()
	return NewDeviceTrustService(repo, logger, pkglogger.NewAuditLogger(logger))
}

func TestTrust_TransitionsUntrustedDevice(t *testing.T) {
	device := NewTestDevice(false)
	repo := &MockDeviceRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.UserDevice, error) {
			return device, nil
		},
	}
	svc := newTrustService(repo)
	actor := uuid.New()

	got, err := svc.Trust(context.Background(), device.ID, actor)

	assert.NoError(t, err)
	assert.Equal(t, 1, repo.SetTrustedCalls)
	assert.True(t, got.IsTrusted)
	assert.Equal(t, actor, *got.TrustChangedBy)
	assert.NotNil(t, got.TrustChangedAt)
}

func TestTrust_AlreadyTrustedIsNoOp(t *testing.T) {
	device := NewTestDevice(true)
	repo := &MockDeviceRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.UserDevice, error) {
			return device, nil
		},
	}
	svc := newTrustService(repo)

	got, err := svc.Trust(context.Background(), device.ID, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, 0, repo.SetTrustedCalls)
	assert.True(t, got.IsTrusted)
}

func TestUntrust_TransitionsTrustedDevice(t *testing.T) {
	device := NewTestDevice(true)
	repo := &MockDeviceRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.UserDevice, error) {
			return device, nil
		},
	}
	svc := newTrustService(repo)

	got, err := svc.Untrust(context.Background(), device.ID, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, 1, repo.SetTrustedCalls)
	assert.False(t, got.IsTrusted)
}

func TestTrust_UnknownDeviceReturnsNotFound(t *testing.T) {
	svc := newTrustService(&MockDeviceRepository{})

	_, err := svc.Trust(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTrust_PersistFailurePropagates(t *testing.T) {
	device := NewTestDevice(false)
	repo := &MockDeviceRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.UserDevice, error) {
			return device, nil
		},
		SetTrustedFunc: func(ctx context.Context, deviceID uuid.UUID, trusted bool, actorID uuid.UUID, at time.Time) error {
			return errors.New("write failed")
		},
	}
	svc := newTrustService(repo)

	_, err := svc.Trust(context.Background(), device.ID, uuid.New())

	assert.Error(t, err)
}

func TestIsTrusted_UnknownDeviceIsUntrusted(t *testing.T) {
	svc := newTrustService(&MockDeviceRepository{})

	assert.False(t, svc.IsTrusted(context.Background(), uuid.New(), "abc123"))
}

func TestIsTrusted_LookupErrorDegradesToUntrusted(t *testing.T) {
	repo := &MockDeviceRepository{
		GetByUserAndFingerprintFunc: func(ctx context.Context, userID uuid.UUID, fp string) (*models.UserDevice, error) {
			return nil, errors.New("database down")
		},
	}
	svc := newTrustService(repo)

	assert.False(t, svc.IsTrusted(context.Background(), uuid.New(), "abc123"))
}

func TestIsTrusted_ReflectsStoredFlag(t *testing.T) {
	device := NewTestDevice(true)
	repo := &MockDeviceRepository{
		GetByUserAndFingerprintFunc: func(ctx context.Context, userID uuid.UUID, fp string) (*models.UserDevice, error) {
			return device, nil
		},
	}
	svc := newTrustService(repo)

	assert.True(t, svc.IsTrusted(context.Background(), device.UserID, device.DeviceFingerprint))
}

func TestListForUser_ClampsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &MockDeviceRepository{
		ListByUserFunc: func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserDevice, error) {
			gotLimit, gotOffset = limit, offset
			return []*models.UserDevice{}, nil
		},
	}
	svc := newTrustService(repo)

	_, err := svc.ListForUser(context.Background(), uuid.New(), 500, -10)

	assert.NoError(t, err)
	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"zero uses default", 0, 50},
		{"negative uses default", -1, 50},
		{"in range passes through", 25, 25},
		{"maximum passes through", 100, 100},
		{"over maximum uses default", 101, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clampLimit(tt.limit))
		})
	}
}
