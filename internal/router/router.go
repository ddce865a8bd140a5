package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"nexusaquarium/docs"
	"nexusaquarium/internal/auth"
	"nexusaquarium/internal/config"
	"nexusaquarium/internal/handler"
	"nexusaquarium/internal/validation"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.Validator = &CustomValidator{validator: validation.New()}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes (require a bearer token)
	secured := api.Group("/users", auth.Middleware(jwtService))
	secured.GET("/me", userHandler.Me)
	secured.PUT("/me", userHandler.UpdateMe)
	secured.POST("/me/devices", userHandler.RegisterDevice)
	secured.GET("/me/preferences", userHandler.GetPreferences)
	secured.PUT("/me/preferences", userHandler.UpdatePreferences)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validation.Validator
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
