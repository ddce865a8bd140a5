package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nexusaquarium/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateDisplayName(ctx context.Context, id uint, displayName *string) error {
	args := m.Called(ctx, id, displayName)
	return args.Error(0)
}

// MockDeviceRepository is a mock implementation of DeviceRepository.
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) Upsert(ctx context.Context, device *model.UserDevice) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) ListByUser(ctx context.Context, userID uint) ([]model.UserDevice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserDevice), args.Error(1)
}

// MockPreferencesRepository is a mock implementation of PreferencesRepository.
type MockPreferencesRepository struct {
	mock.Mock
}

func (m *MockPreferencesRepository) CreateDefault(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockPreferencesRepository) FindByUser(ctx context.Context, userID uint) (*model.UserPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserPreferences), args.Error(1)
}

func (m *MockPreferencesRepository) Save(ctx context.Context, prefs *model.UserPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
