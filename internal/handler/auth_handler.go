package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "nexusaquarium/internal/errors"
	"nexusaquarium/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email_shape"`
	Password    string  `json:"password" validate:"required,strong_password"`
	DisplayName *string `json:"displayName" validate:"omitempty,display_name"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	result, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, TokenResponse{Token: result.Token})
}

// Login godoc
// @Summary Login user
// @Description Unknown email and wrong password get the same 401 response.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidCredentials()
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			c.Logger().Errorf("login failed: %v", err)
		}
		return invalidCredentials()
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: result.Token})
}

func invalidCredentials() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: apperrors.ErrInvalidCredentials.Error(),
		Code:  "INVALID_CREDENTIALS",
	})
}
