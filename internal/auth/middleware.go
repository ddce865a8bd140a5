package auth

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "nexusaquarium/internal/errors"
)

const (
	// Realm is advertised in the WWW-Authenticate challenge.
	Realm = "nexus-aquarium"

	claimsContextKey = "user"
)

// Middleware guards a route group: requests without a valid bearer token are
// answered with a 401 challenge, the rest carry *Claims in the echo context.
func Middleware(s *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return s.Parse(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="`+Realm+`"`)
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "Token is not valid or has expired",
				Code:  "INVALID_TOKEN",
			})
		},
	})
}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok
}

// UserIDFrom returns the acting user id stored by Middleware.
func UserIDFrom(c echo.Context) (uint, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return 0, apperrors.ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, apperrors.ErrInvalidToken
	}
	return id, nil
}
