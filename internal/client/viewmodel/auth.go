// Package viewmodel exposes the client session as observable state for a UI.
package viewmodel

import (
	"context"
	"errors"

	"github.com/labstack/gommon/log"

	"nexusaquarium/internal/client/api"
	"nexusaquarium/internal/client/session"
)

// Status is the coarse session state.
type Status int

const (
	StatusLoading Status = iota
	StatusLoggedOut
	StatusLoggedIn
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoggedOut:
		return "logged out"
	case StatusLoggedIn:
		return "logged in"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is what the UI renders. User is set only when LoggedIn, Message
// only in Error.
type State struct {
	Status  Status
	User    *session.User
	Message string
}

// MsgServerUnreachable is shown when a request never got a response.
const MsgServerUnreachable = "Unable to reach the server. Check your connection and try again."

// AuthAPI is the subset of the API client the view-model calls.
type AuthAPI interface {
	Register(ctx context.Context, email, password string, displayName *string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (*api.Profile, error)
	UpdateMe(ctx context.Context, token, displayName string) (*api.Profile, error)
}

// SessionStore is the persisted session, implemented by *session.Client.
type SessionStore interface {
	SaveToken(ctx context.Context, token string) error
	GetToken(ctx context.Context) (string, bool)
	SaveUser(ctx context.Context, user session.User) error
	GetUser(ctx context.Context) (*session.User, bool)
	ClearAuth(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
}

// AuthViewModel drives the session state machine:
//
//	Loading -> LoggedIn | LoggedOut
//	LoggedOut -> LoggedIn | Error      (Login, Register)
//	Error -> LoggedOut                 (ClearError)
//	LoggedIn -> LoggedOut              (Logout)
type AuthViewModel struct {
	api     AuthAPI
	session SessionStore

	State   *Observable[State]
	Loading *Observable[bool]

	ready chan struct{}
}

// NewAuthViewModel starts in Loading and restores any persisted session in
// the background. Ready is closed once that check is done.
func NewAuthViewModel(ctx context.Context, authAPI AuthAPI, store SessionStore) *AuthViewModel {
	vm := &AuthViewModel{
		api:     authAPI,
		session: store,
		State:   NewObservable(State{Status: StatusLoading}),
		Loading: NewObservable(false),
		ready:   make(chan struct{}),
	}
	go vm.restore(ctx)
	return vm
}

// Ready is closed when the startup check has settled the initial state.
func (vm *AuthViewModel) Ready() <-chan struct{} {
	return vm.ready
}

// restore re-validates the stored token by fetching the profile, so a token
// that expired or was rejected server-side is dropped right away.
func (vm *AuthViewModel) restore(ctx context.Context) {
	defer close(vm.ready)

	if !vm.session.IsLoggedIn(ctx) {
		vm.State.Set(State{Status: StatusLoggedOut})
		return
	}
	token, _ := vm.session.GetToken(ctx)

	profile, err := vm.api.Me(ctx, token)
	if err != nil {
		log.Infof("stored session rejected: %v", err)
		if err := vm.session.ClearAuth(ctx); err != nil {
			log.Warnf("clearing session: %v", err)
		}
		vm.State.Set(State{Status: StatusLoggedOut})
		return
	}

	user := userFrom(profile, token)
	if err := vm.session.SaveUser(ctx, user); err != nil {
		log.Warnf("refreshing cached user: %v", err)
	}
	vm.State.Set(State{Status: StatusLoggedIn, User: &user})
}

// Login authenticates and persists the session. The returned error is also
// reflected as Error state.
func (vm *AuthViewModel) Login(ctx context.Context, email, password string) error {
	return vm.authenticate(ctx, func() (string, error) {
		return vm.api.Login(ctx, email, password)
	})
}

// Register creates the account and signs in with the returned token.
func (vm *AuthViewModel) Register(ctx context.Context, email, password string, displayName *string) error {
	return vm.authenticate(ctx, func() (string, error) {
		return vm.api.Register(ctx, email, password, displayName)
	})
}

func (vm *AuthViewModel) authenticate(ctx context.Context, obtainToken func() (string, error)) error {
	vm.Loading.Set(true)
	defer vm.Loading.Set(false)

	token, err := obtainToken()
	if err != nil {
		return vm.fail(err)
	}

	profile, err := vm.api.Me(ctx, token)
	if err != nil {
		return vm.fail(err)
	}

	user := userFrom(profile, token)
	if err := vm.session.SaveToken(ctx, token); err != nil {
		return vm.fail(err)
	}
	if err := vm.session.SaveUser(ctx, user); err != nil {
		return vm.fail(err)
	}

	vm.State.Set(State{Status: StatusLoggedIn, User: &user})
	return nil
}

func (vm *AuthViewModel) fail(err error) error {
	vm.State.Set(State{Status: StatusError, Message: messageFor(err)})
	return err
}

// Logout clears the stored session. No request is made.
func (vm *AuthViewModel) Logout(ctx context.Context) {
	if err := vm.session.ClearAuth(ctx); err != nil {
		log.Warnf("clearing session: %v", err)
	}
	vm.State.Set(State{Status: StatusLoggedOut})
}

// ClearError dismisses an Error state. Other states are left alone.
func (vm *AuthViewModel) ClearError() {
	vm.State.Update(func(s State) State {
		if s.Status == StatusError {
			return State{Status: StatusLoggedOut}
		}
		return s
	})
}

// UpdateDisplayName changes the signed-in user's display name. A 401 means
// the session is gone and logs the user out.
func (vm *AuthViewModel) UpdateDisplayName(ctx context.Context, displayName string) error {
	current := vm.CurrentUser()
	if current == nil {
		return errors.New("not logged in")
	}

	vm.Loading.Set(true)
	defer vm.Loading.Set(false)

	profile, err := vm.api.UpdateMe(ctx, current.Token, displayName)
	if err != nil {
		if api.IsUnauthorized(err) {
			vm.Logout(ctx)
		}
		return err
	}

	user := userFrom(profile, current.Token)
	if err := vm.session.SaveUser(ctx, user); err != nil {
		log.Warnf("caching updated user: %v", err)
	}
	vm.State.Set(State{Status: StatusLoggedIn, User: &user})
	return nil
}

// CurrentUser returns the signed-in user, or nil.
func (vm *AuthViewModel) CurrentUser() *session.User {
	s := vm.State.Get()
	if s.Status != StatusLoggedIn {
		return nil
	}
	return s.User
}

func (vm *AuthViewModel) IsLoggedIn() bool {
	return vm.State.Get().Status == StatusLoggedIn
}

func userFrom(p *api.Profile, token string) session.User {
	return session.User{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Token:       token,
	}
}

func messageFor(err error) string {
	if errors.Is(err, api.ErrTransient) {
		return MsgServerUnreachable
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
