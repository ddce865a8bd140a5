package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"nexusaquarium/internal/auth"
	"nexusaquarium/internal/model"
	"nexusaquarium/internal/service"
)

// UserHandler serves the authenticated user's own resources.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest is the body of PUT /users/me.
type UpdateUserRequest struct {
	DisplayName *string `json:"displayName" validate:"required,display_name"`
}

// RegisterDeviceRequest is the body of POST /users/me/devices.
type RegisterDeviceRequest struct {
	DeviceToken string `json:"deviceToken" validate:"required"`
	DeviceOS    string `json:"deviceOs" validate:"required,device_os"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Me godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserProfile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := auth.UserIDFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary Update the current user's display name
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "Profile fields"
// @Success 200 {object} model.UserProfile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	id, err := auth.UserIDFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	profile, err := h.svc.UpdateProfile(c.Request().Context(), id, service.ProfileUpdate{DisplayName: req.DisplayName})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// RegisterDevice godoc
// @Summary Register a push-notification device
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterDeviceRequest true "Device"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/devices [post]
func (h *UserHandler) RegisterDevice(c echo.Context) error {
	id, err := auth.UserIDFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	var req RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	in := service.DeviceInput{DeviceToken: req.DeviceToken, DeviceOS: req.DeviceOS}
	if err := h.svc.RegisterDevice(c.Request().Context(), id, in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "device registered"})
}

// GetPreferences godoc
// @Summary Get notification preferences
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserPreferences
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/preferences [get]
func (h *UserHandler) GetPreferences(c echo.Context) error {
	id, err := auth.UserIDFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	prefs, err := h.svc.GetPreferences(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences godoc
// @Summary Update notification preferences
// @Description Omitted fields keep their current value.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.PreferencesUpdate true "Preferences"
// @Success 200 {object} model.UserPreferences
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/preferences [put]
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	id, err := auth.UserIDFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	var req model.PreferencesUpdate
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	prefs, err := h.svc.UpdatePreferences(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, prefs)
}
