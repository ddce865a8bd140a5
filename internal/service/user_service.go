package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nexusaquarium/internal/cache"
	"nexusaquarium/internal/model"
	"nexusaquarium/internal/repository"
	"nexusaquarium/internal/validation"
)

const profileCacheTTL = 5 * time.Minute

// DeviceInput is a device registration request.
type DeviceInput struct {
	DeviceToken string `json:"deviceToken" validate:"required"`
	DeviceOS    string `json:"deviceOs" validate:"required,device_os"`
}

// ProfileUpdate is a profile update request.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName" validate:"required,display_name"`
}

// UserService exposes the authenticated user's own resources.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*model.UserProfile, error)
	RegisterDevice(ctx context.Context, id uint, in DeviceInput) error
	GetPreferences(ctx context.Context, id uint) (*model.UserPreferences, error)
	UpdatePreferences(ctx context.Context, id uint, update model.PreferencesUpdate) (*model.UserPreferences, error)
}

type userService struct {
	credentials CredentialService
	users       repository.UserRepository
	devices     repository.DeviceRepository
	preferences repository.PreferencesRepository
	cache       *cache.Client
	validator   *validation.Validator
	now         func() time.Time
}

// NewUserService builds a UserService. cache may be nil.
func NewUserService(
	credentials CredentialService,
	users repository.UserRepository,
	devices repository.DeviceRepository,
	preferences repository.PreferencesRepository,
	cache *cache.Client,
	validator *validation.Validator,
) UserService {
	return &userService{
		credentials: credentials,
		users:       users,
		devices:     devices,
		preferences: preferences,
		cache:       cache,
		validator:   validator,
		now:         time.Now,
	}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*model.UserProfile, error) {
	var cached model.UserProfile
	if cache.GetJSON(ctx, s.cache, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.credentials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	cache.SetJSON(ctx, s.cache, s.cacheKey(id), profile, profileCacheTTL)
	return profile, nil
}

// UpdateProfile trims the new display name before validating it, so a
// blank name is rejected like an empty one.
func (s *userService) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*model.UserProfile, error) {
	update.DisplayName = normalizeDisplayName(update.DisplayName)
	if err := s.validator.Struct(update); err != nil {
		return nil, err
	}

	user, err := s.credentials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	displayName := update.DisplayName
	if err := s.users.UpdateDisplayName(ctx, id, displayName); err != nil {
		return nil, fmt.Errorf("update display name: %w", err)
	}
	s.cache.Delete(ctx, s.cacheKey(id))

	user.DisplayName = displayName
	return user.Profile(), nil
}

func (s *userService) RegisterDevice(ctx context.Context, id uint, in DeviceInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	if _, err := s.credentials.GetByID(ctx, id); err != nil {
		return err
	}

	device := &model.UserDevice{
		UserID:      id,
		DeviceToken: in.DeviceToken,
		DeviceOS:    in.DeviceOS,
		LastLogin:   s.now().UTC(),
	}
	if err := s.devices.Upsert(ctx, device); err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

// GetPreferences falls back to the defaults when the user has no row.
func (s *userService) GetPreferences(ctx context.Context, id uint) (*model.UserPreferences, error) {
	prefs, err := s.preferences.FindByUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultPreferences(id), nil
		}
		return nil, fmt.Errorf("find preferences: %w", err)
	}
	return prefs, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, id uint, update model.PreferencesUpdate) (*model.UserPreferences, error) {
	if _, err := s.credentials.GetByID(ctx, id); err != nil {
		return nil, err
	}

	prefs, err := s.GetPreferences(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(prefs)

	if err := s.preferences.Save(ctx, prefs); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}
