package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "nexusaquarium/docs" // swagger docs

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"nexusaquarium/internal/auth"
	"nexusaquarium/internal/cache"
	"nexusaquarium/internal/config"
	"nexusaquarium/internal/db"
	"nexusaquarium/internal/handler"
	"nexusaquarium/internal/logging"
	"nexusaquarium/internal/repository"
	"nexusaquarium/internal/router"
	"nexusaquarium/internal/service"
	"nexusaquarium/internal/validation"
)

// @title Nexus Aquarium API
// @version 1.0
// @description Account registration, login and profile endpoints for Nexus Aquarium.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("config: %+v", err)
	}
	log.SetLevel(logging.ParseLevel(cfg.LogLevel))

	gormDB, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Warnf("reset database: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	var cacheClient *cache.Client
	if cfg.Redis.Addr != "" {
		cacheClient = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "nexus:")
		if err := cacheClient.Ping(context.Background()); err != nil {
			log.Warnf("redis unavailable, profile cache degraded: %v", err)
		}
		defer cacheClient.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	deviceRepo := repository.NewDeviceRepository(gormDB)
	prefsRepo := repository.NewPreferencesRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWT.Secret,
		auth.WithIssuer(cfg.JWT.Issuer),
		auth.WithAudience(cfg.JWT.Audience),
		auth.WithTTL(cfg.JWT.TTL),
	)
	v := validation.New()

	// Initialize services
	credentialService, err := service.NewCredentialService(userRepo, prefsRepo, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("credential service: %v", err)
	}
	authService := service.NewAuthService(credentialService, jwtService, v)
	userService := service.NewUserService(credentialService, userRepo, deviceRepo, prefsRepo, cacheClient, v)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	e.Use(echoprometheus.NewMiddleware("nexus_aquarium"))

	router.Register(
		e,
		cfg,
		jwtService,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
	)

	go func() {
		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + cfg.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		log.Infof("swagger documentation available at /swagger/index.html")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
