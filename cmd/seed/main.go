package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"nexusaquarium/internal/config"
	"nexusaquarium/internal/db"
	apperrors "nexusaquarium/internal/errors"
	"nexusaquarium/internal/repository"
	"nexusaquarium/internal/service"
	"nexusaquarium/internal/validation"
)

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName"`
}

func main() {
	source := flag.String("from", "seed/users.json", "path or http(s) URL of a JSON array of users")
	timeout := flag.Duration("timeout", 30*time.Second, "timeout for fetching a seed URL")
	flag.Parse()

	log.Info("Starting seed script...")

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("config: %+v", err)
	}

	gormDB, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	users, err := loadUsers(*source, *timeout)
	if err != nil {
		log.Fatalf("Failed to load users: %v", err)
	}
	log.Infof("Loaded %d users from %s", len(users), *source)

	creds, err := service.NewCredentialService(
		repository.NewUserRepository(gormDB),
		repository.NewPreferencesRepository(gormDB),
		cfg.BcryptCost,
	)
	if err != nil {
		log.Fatalf("credential service: %v", err)
	}

	created, skipped, err := seedUsers(context.Background(), creds, validation.New(), users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Infof("Seed completed: %d created, %d skipped", created, skipped)
}

// loadUsers reads the seed list from a local file or an HTTP URL. The
// timeout bounds the whole HTTP exchange, body included.
func loadUsers(source string, timeout time.Duration) ([]SeedUser, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: timeout}
		resp, err := client.Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status code %d", source, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	var users []SeedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return users, nil
}

// seedUsers registers every valid entry. Invalid entries and emails that
// already exist are skipped.
func seedUsers(ctx context.Context, creds service.CredentialService, v *validation.Validator, users []SeedUser) (created, skipped int, err error) {
	for _, u := range users {
		in := service.RegisterInput{Email: u.Email, Password: u.Password, DisplayName: u.DisplayName}
		if verr := v.Struct(in); verr != nil {
			log.Warnf("Skipping %q: %v", u.Email, verr)
			skipped++
			continue
		}

		if _, err := creds.Register(ctx, u.Email, u.Password, u.DisplayName); err != nil {
			if errors.Is(err, apperrors.ErrEmailTaken) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("register %s: %w", u.Email, err)
		}
		created++
	}
	return created, skipped, nil
}
