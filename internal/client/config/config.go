// Package config holds the command-line client settings.
package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime settings for the client. Environment variables set
// the defaults; command-line flags override them.
type Config struct {
	ServerURL    string        `env:"CLIENT_SERVER_URL,default=http://localhost:8080/api/v1"`
	DataDir      string        `env:"CLIENT_DATA_DIR,default=.nexusaquarium"`
	DeviceSecret string        `env:"CLIENT_DEVICE_SECRET"`
	Timeout      time.Duration `env:"CLIENT_TIMEOUT,default=30s"`
	LogLevel     string        `env:"CLIENT_LOG_LEVEL,default=warn"`
}

// Load reads the environment through l, then applies flags parsed from args.
// It returns the remaining positional arguments.
func Load(ctx context.Context, l envconfig.Lookuper, args []string) (*Config, []string, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, cfg, l); err != nil {
		return nil, nil, fmt.Errorf("parsing env vars: %w", err)
	}

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "API base URL")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding the encrypted session store")
	fs.StringVar(&cfg.DeviceSecret, "secret", cfg.DeviceSecret, "device secret unlocking the session store")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, error or off")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if cfg.DeviceSecret == "" {
		return nil, nil, errors.New("a device secret is required (-secret or CLIENT_DEVICE_SECRET)")
	}
	if cfg.Timeout <= 0 {
		return nil, nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return cfg, fs.Args(), nil
}
