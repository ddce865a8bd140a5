package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string   `env:"SERVER_PORT,default=8080"`
	MetricsPort    string   `env:"METRICS_PORT,default=8081"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=*"`
	LogLevel       string   `env:"LOG_LEVEL,default=info"`
	SwaggerHost    string   `env:"SWAGGER_HOST"`
	ResetDB        bool     `env:"RESET_DB,default=false"`
	BcryptCost     int      `env:"BCRYPT_COST,default=10"`

	Database struct {
		Driver string `env:"DB_DRIVER,default=sqlite"`
		DSN    string `env:"DB_DSN,default=file:nexusaquarium.db"`
	}

	// Redis is optional; an empty address disables the profile cache.
	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		DB       int    `env:"REDIS_DB,default=0"`
		Password string `env:"REDIS_PASSWORD"`
	}

	JWT struct {
		Secret   string        `env:"JWT_SECRET,required"`
		Issuer   string        `env:"JWT_ISSUER,default=nexus-aquarium"`
		Audience string        `env:"JWT_AUDIENCE,default=nexus-aquarium-users"`
		TTL      time.Duration `env:"JWT_TTL,default=168h"`
	}
}

// Load builds Config from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith builds Config from the given lookuper and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, cfg, l); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}
