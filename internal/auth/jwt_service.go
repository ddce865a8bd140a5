package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "nexusaquarium/internal/errors"
)

const (
	// DefaultTokenTTL is the lifetime of a session token.
	DefaultTokenTTL = 7 * 24 * time.Hour
	// DefaultIssuer is the iss claim written and required by default.
	DefaultIssuer = "nexus-aquarium"
	// DefaultAudience is the aud claim written and required by default.
	DefaultAudience = "nexus-aquarium-users"
)

// Claims represents JWT claims. The subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("subject %q is not a user id", c.Subject)
	}
	return uint(id), nil
}

// JWTService issues and verifies stateless session tokens. It holds no
// mutable state and is safe for concurrent use.
type JWTService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) Option {
	return func(s *JWTService) { s.issuer = issuer }
}

// WithAudience overrides DefaultAudience.
func WithAudience(audience string) Option {
	return func(s *JWTService) { s.audience = audience }
}

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *JWTService) { s.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string, opts ...Option) *JWTService {
	s := &JWTService{
		secret:   []byte(secret),
		issuer:   DefaultIssuer,
		audience: DefaultAudience,
		ttl:      DefaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for the user.
func (s *JWTService) Issue(userID uint, email string) (string, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims. Every failure, whatever
// the cause, is reported as ErrInvalidToken.
func (s *JWTService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	return claims, nil
}

// Verify validates a token and returns the user id it was issued for.
func (s *JWTService) Verify(tokenString string) (uint, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}
