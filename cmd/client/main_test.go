package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nexusaquarium/internal/auth"
	"nexusaquarium/internal/client/api"
	"nexusaquarium/internal/client/securestore"
	"nexusaquarium/internal/client/session"
	"nexusaquarium/internal/client/viewmodel"
	"nexusaquarium/internal/config"
	"nexusaquarium/internal/db"
	"nexusaquarium/internal/handler"
	"nexusaquarium/internal/repository"
	"nexusaquarium/internal/router"
	"nexusaquarium/internal/service"
	"nexusaquarium/internal/validation"
)

// newBackend serves the real API over an in-memory database.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gormDB, err := db.Open(config.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	users := repository.NewUserRepository(gormDB)
	devices := repository.NewDeviceRepository(gormDB)
	prefs := repository.NewPreferencesRepository(gormDB)
	creds, err := service.NewCredentialService(users, prefs, bcrypt.MinCost)
	require.NoError(t, err)

	v := validation.New()
	jwtService := auth.NewJWTService("client-test-secret")
	e := echo.New()
	router.Register(e, &config.Config{AllowedOrigins: []string{"*"}}, jwtService,
		handler.NewAuthHandler(service.NewAuthService(creds, jwtService, v)),
		handler.NewUserHandler(service.NewUserService(creds, users, devices, prefs, nil, v)),
	)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func fixedPassword(pw string) passwordReader {
	return func(io.Writer) (string, error) { return pw, nil }
}

// device is one client installation: an encrypted store that survives
// restarts of the view-model.
type device struct {
	t       *testing.T
	baseURL string
	store   *securestore.Store
}

func newDevice(t *testing.T, baseURL string) *device {
	store, err := securestore.Open(context.Background(), "file:"+uuid.NewString()+"?mode=memory&cache=shared", []byte("pin"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return &device{t: t, baseURL: baseURL, store: store}
}

func (d *device) start() *viewmodel.AuthViewModel {
	vm := viewmodel.NewAuthViewModel(context.Background(), api.NewClient(d.baseURL, 5*time.Second), session.NewClient(d.store))
	select {
	case <-vm.Ready():
	case <-time.After(5 * time.Second):
		d.t.Fatal("view-model never became ready")
	}
	return vm
}

func (d *device) run(pw string, args ...string) (string, error) {
	var out bytes.Buffer
	err := run(context.Background(), d.start(), args, &out, fixedPassword(pw))
	return out.String(), err
}

func TestClientFlow(t *testing.T) {
	srv := newBackend(t)
	phone := newDevice(t, srv.URL+"/api/v1")

	out, err := phone.run("", "status")
	require.NoError(t, err)
	assert.Equal(t, "logged out\n", out)

	out, err = phone.run("abc12345", "register", "a@x.com", "Nemo", "Fish")
	require.NoError(t, err)
	assert.Equal(t, "logged in as a@x.com (Nemo Fish)\n", out)

	// a fresh start restores the session from the encrypted store
	out, err = phone.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "a@x.com\tNemo Fish")

	out, err = phone.run("", "rename", "Dory")
	require.NoError(t, err)
	assert.Contains(t, out, "(Dory)")

	out, err = phone.run("", "logout")
	require.NoError(t, err)
	assert.Equal(t, "logged out\n", out)

	_, err = phone.run("", "whoami")
	assert.Error(t, err)

	_, err = phone.run("wrong1234", "login", "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	out, err = phone.run("abc12345", "login", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "logged in as a@x.com (Dory)\n", out)
}

func TestClientRegisterErrors(t *testing.T) {
	srv := newBackend(t)
	phone := newDevice(t, srv.URL+"/api/v1")

	_, err := phone.run("short", "register", "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password must be at least 8 characters")

	_, err = phone.run("abc12345", "register", "a@x.com")
	require.NoError(t, err)

	other := newDevice(t, srv.URL+"/api/v1")
	_, err = other.run("abc12345", "register", "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestClientUnreachableServer(t *testing.T) {
	phone := newDevice(t, "http://127.0.0.1:1/api/v1")
	_, err := phone.run("abc12345", "login", "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), viewmodel.MsgServerUnreachable)
}

func TestRunUsage(t *testing.T) {
	phone := newDevice(t, "http://127.0.0.1:1/api/v1")

	tests := [][]string{
		{},
		{"dance"},
		{"login"},
		{"register"},
		{"rename"},
	}
	for _, args := range tests {
		_, err := phone.run("", args...)
		assert.Error(t, err, "%v", args)
	}
}
