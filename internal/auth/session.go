// Package auth holds the signed-in user's session: the bearer token, the
// profile it resolves to, and the last authentication error. The token is
// persisted through a TokenStore so a restarted process can hydrate it.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/validator"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotAuthenticated = errors.New("not authenticated")

const (
	msgLoginFailed    = "No se pudo iniciar sesión"
	msgRegisterFailed = "No se pudo registrar"
)

// API is the subset of the remote client the session needs.
type API interface {
	Login(ctx context.Context, email, password string) (transport.TokenResponse, error)
	Register(ctx context.Context, req transport.RegisterRequest) (transport.User, error)
	Me(ctx context.Context, token string) (transport.User, error)
}

type Session struct {
	api   API
	store TokenStore
	val   *validator.Validator
	log   *logger.Logger
	now   func() time.Time

	mu      sync.RWMutex
	token   string
	user    *transport.User
	loading bool
	lastErr string
}

func NewSession(api API, store TokenStore, val *validator.Validator, log *logger.Logger) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	if val == nil {
		val = validator.New()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Session{api: api, store: store, val: val, log: log, now: time.Now}
}

// Hydrate restores a persisted token. Expired tokens are discarded without a
// network call; a token the API rejects logs the session out.
func (s *Session) Hydrate(ctx context.Context) error {
	token, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if TokenExpired(token, s.now()) {
		s.log.AuthEvent("hydrate", "", false, "token expired")
		return s.Logout(ctx)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.api.Me(ctx, token)
	if err != nil {
		s.log.AuthEvent("hydrate", "", false, err.Error())
		if clearErr := s.Logout(ctx); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	s.log.AuthEvent("hydrate", user.Email, true, "")
	return nil
}

// Login exchanges credentials for a token, persists it and loads the profile.
func (s *Session) Login(ctx context.Context, email, password string) error {
	req := transport.LoginRequest{Email: email, Password: password}
	s.beginAttempt()
	defer s.setLoading(false)

	if err := s.val.Check(req); err != nil {
		return s.fail("login", email, err, msgLoginFailed)
	}

	res, err := s.api.Login(ctx, req.Email, req.Password)
	if err != nil {
		return s.fail("login", email, err, msgLoginFailed)
	}

	s.mu.Lock()
	s.token = res.AccessToken
	s.mu.Unlock()

	if err := s.store.Save(ctx, res.AccessToken); err != nil {
		_ = s.Logout(ctx)
		return s.fail("login", email, err, msgLoginFailed)
	}

	// A token without a profile is not a session.
	user, err := s.api.Me(ctx, res.AccessToken)
	if err != nil {
		_ = s.Logout(ctx)
		return s.fail("login", email, err, msgLoginFailed)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.log.AuthEvent("login", email, true, "")
	return nil
}

// Register creates an account. It does not sign the user in.
func (s *Session) Register(ctx context.Context, req transport.RegisterRequest) (transport.User, error) {
	s.beginAttempt()
	defer s.setLoading(false)

	if err := s.val.Check(req); err != nil {
		return transport.User{}, s.fail("register", req.Email, err, msgRegisterFailed)
	}

	user, err := s.api.Register(ctx, req)
	if err != nil {
		return transport.User{}, s.fail("register", req.Email, err, msgRegisterFailed)
	}
	s.log.AuthEvent("register", req.Email, true, "")
	return user, nil
}

// Logout clears the in-memory state and the persisted token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	email := ""
	if s.user != nil {
		email = s.user.Email
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if email != "" {
		s.log.AuthEvent("logout", email, true, "")
	}
	return s.store.Clear(ctx)
}

// RefreshUser reloads the profile for the current token. It is a no-op when signed out.
func (s *Session) RefreshUser(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return nil
	}
	user, err := s.api.Me(ctx, token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the loaded profile, or nil when signed out.
func (s *Session) User() *transport.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Error is the message of the last failed login or registration.
func (s *Session) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// AgencyID returns the agency of the signed-in user; creating leads requires one.
func (s *Session) AgencyID() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0, apperr.Wrap(apperr.KindUnauthorized, "Inicia sesión para continuar", ErrNotAuthenticated)
	}
	if s.user.AgencyID == nil {
		return 0, apperr.Validation("El usuario necesita agency_id para crear leads")
	}
	return *s.user.AgencyID, nil
}

func (s *Session) beginAttempt() {
	s.mu.Lock()
	s.lastErr = ""
	s.loading = true
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) fail(event, email string, err error, fallback string) error {
	msg := apperr.UserMessage(err, fallback)
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	s.log.AuthEvent(event, email, false, err.Error())
	return err
}

// TokenExpired reports whether token is a JWT whose exp claim is not after now.
// The signature is not checked; tokens that do not parse are left to the API to judge.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
