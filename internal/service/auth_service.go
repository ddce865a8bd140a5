package service

import (
	"context"
	"fmt"
	"strings"

	"nexusaquarium/internal/auth"
	"nexusaquarium/internal/model"
	"nexusaquarium/internal/validation"
)

// RegisterInput is the registration payload as the service sees it.
type RegisterInput struct {
	Email       string  `json:"email" validate:"required,email_shape"`
	Password    string  `json:"password" validate:"required,strong_password"`
	DisplayName *string `json:"displayName" validate:"omitempty,display_name"`
}

// AuthResult is what a successful register or login yields.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	credentials CredentialService
	jwtService  *auth.JWTService
	validator   *validation.Validator
}

// NewAuthService creates a new authentication service.
func NewAuthService(credentials CredentialService, jwtService *auth.JWTService, validator *validation.Validator) AuthService {
	return &authService{
		credentials: credentials,
		jwtService:  jwtService,
		validator:   validator,
	}
}

// Register validates the input before the store is touched, creates the
// account and issues a token for it.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.DisplayName = normalizeDisplayName(in.DisplayName)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.credentials.Register(ctx, in.Email, in.Password, in.DisplayName)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates the credentials and issues a token.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// normalizeDisplayName trims whitespace; blank names become nil.
func normalizeDisplayName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
