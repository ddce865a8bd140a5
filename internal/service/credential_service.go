package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "nexusaquarium/internal/errors"
	"nexusaquarium/internal/model"
	"nexusaquarium/internal/repository"
	"nexusaquarium/internal/validation"
)

// DefaultBcryptCost is used when NewCredentialService gets a cost of 0.
const DefaultBcryptCost = 10

// CredentialService owns account rows and password hashes.
type CredentialService interface {
	Register(ctx context.Context, email, password string, displayName *string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

type credentialService struct {
	users       repository.UserRepository
	preferences repository.PreferencesRepository
	cost        int
	// dummyHash is compared against when the email is unknown so both
	// failure paths spend a bcrypt comparison.
	dummyHash []byte
}

// NewCredentialService creates a credential service hashing with the given bcrypt cost.
func NewCredentialService(users repository.UserRepository, preferences repository.PreferencesRepository, cost int) (CredentialService, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("nexus-aquarium-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &credentialService{
		users:       users,
		preferences: preferences,
		cost:        cost,
		dummyHash:   dummy,
	}, nil
}

// Register creates a new account with hashed password and default preferences.
func (s *credentialService) Register(ctx context.Context, email, password string, displayName *string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError("password", validation.MsgLongPassword)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		DisplayName:  displayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.preferences.CreateDefault(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("create default preferences: %w", err)
	}

	return user, nil
}

// Authenticate returns the user owning email if password matches its hash.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *credentialService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *credentialService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
