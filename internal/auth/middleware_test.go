package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedServer(svc *JWTService) *echo.Echo {
	e := echo.New()
	g := e.Group("", Middleware(svc))
	g.GET("/whoami", func(c echo.Context) error {
		id, err := UserIDFrom(c)
		if err != nil {
			return err
		}
		claims, _ := ClaimsFrom(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "email": claims.Email})
	})
	return e
}

func TestMiddleware(t *testing.T) {
	svc := NewJWTService("test-secret")
	e := newProtectedServer(svc)

	token, err := svc.Issue(9, "fish@x.com")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"id":9,"email":"fish@x.com"}`, rec.Body.String())
				return
			}
			assert.Equal(t, `Bearer realm="nexus-aquarium"`, rec.Header().Get(echo.HeaderWWWAuthenticate))
			assert.Contains(t, rec.Body.String(), "Token is not valid or has expired")
		})
	}
}

func TestUserIDFrom_NoClaims(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserIDFrom(c)
	assert.Error(t, err)
}
