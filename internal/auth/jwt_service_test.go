package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nexusaquarium/internal/errors"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	now := time.Now()
	svc := NewJWTService("test-secret", WithClock(fixedClock(now)))

	token, err := svc.Issue(42, "a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{DefaultAudience}, claims.Audience)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(DefaultTokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret")
	first, err := svc.Issue(1, "a@x.com")
	require.NoError(t, err)
	second, err := svc.Issue(1, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestJWTService_VerifyRejects(t *testing.T) {
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	issuer := NewJWTService("test-secret", WithClock(fixedClock(issuedAt)))
	expired, err := issuer.Issue(1, "a@x.com")
	require.NoError(t, err)

	valid, err := NewJWTService("test-secret").Issue(1, "a@x.com")
	require.NoError(t, err)

	otherKey, err := NewJWTService("other-secret").Issue(1, "a@x.com")
	require.NoError(t, err)

	otherIssuer, err := NewJWTService("test-secret", WithIssuer("someone-else")).Issue(1, "a@x.com")
	require.NoError(t, err)

	otherAudience, err := NewJWTService("test-secret", WithAudience("admins")).Issue(1, "a@x.com")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    DefaultIssuer,
			Audience:  jwt.ClaimStrings{DefaultAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-number",
			Issuer:    DefaultIssuer,
			Audience:  jwt.ClaimStrings{DefaultAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "1",
			Issuer:   DefaultIssuer,
			Audience: jwt.ClaimStrings{DefaultAudience},
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong key", otherKey},
		{"wrong issuer", otherIssuer},
		{"wrong audience", otherAudience},
		{"none algorithm", noneAlg},
		{"non numeric subject", badSubject},
		{"missing expiry", noExpiry},
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"tampered", valid + "x"},
	}

	svc := NewJWTService("test-secret")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
			assert.Zero(t, userID)
		})
	}
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	svc := NewJWTService("test-secret", WithTTL(time.Hour), WithClock(func() time.Time { return clock }))

	token, err := svc.Issue(7, "a@x.com")
	require.NoError(t, err)

	clock = issuedAt.Add(59 * time.Minute)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	clock = issuedAt.Add(61 * time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
