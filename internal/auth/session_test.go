package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/platform/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	token    string
	loginErr error
	meErr    error
	regErr   error
	user     transport.User
	meCalls  int
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (transport.TokenResponse, error) {
	if f.loginErr != nil {
		return transport.TokenResponse{}, f.loginErr
	}
	return transport.TokenResponse{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeAPI) Register(_ context.Context, req transport.RegisterRequest) (transport.User, error) {
	if f.regErr != nil {
		return transport.User{}, f.regErr
	}
	return transport.User{ID: 9, Email: req.Email, IsActive: true}, nil
}

func (f *fakeAPI) Me(_ context.Context, _ string) (transport.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return transport.User{}, f.meErr
	}
	return f.user, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ana@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestLoginPersistsTokenAndLoadsUser(t *testing.T) {
	ctx := context.Background()
	agency := int64(4)
	api := &fakeAPI{token: "tok-1", user: transport.User{ID: 1, Email: "ana@example.com", AgencyID: &agency}}
	store := NewMemoryStore()
	s := NewSession(api, store, nil, nil)

	require.NoError(t, s.Login(ctx, "ana@example.com", "secret"))

	assert.Equal(t, "tok-1", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "ana@example.com", s.User().Email)
	assert.Empty(t, s.Error())
	assert.False(t, s.Loading())

	saved, _ := store.Load(ctx)
	assert.Equal(t, "tok-1", saved)

	id, err := s.AgencyID()
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestLoginFailureRecordsMessage(t *testing.T) {
	api := &fakeAPI{loginErr: apperr.FromStatus(401, "Credenciales inválidas")}
	s := NewSession(api, nil, nil, nil)

	err := s.Login(context.Background(), "ana@example.com", "bad")
	require.Error(t, err)
	assert.Equal(t, "Credenciales inválidas", s.Error())
	assert.Empty(t, s.Token())
}

func TestLoginLogsOutWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	api := &fakeAPI{token: "tok-1", meErr: apperr.FromStatus(500, "Servicio no disponible")}
	s := NewSession(api, store, nil, nil)

	require.Error(t, s.Login(ctx, "ana@example.com", "secret"))

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.Equal(t, "Servicio no disponible", s.Error())
	assert.False(t, s.Loading())

	saved, _ := store.Load(ctx)
	assert.Empty(t, saved)
}

func TestLoginFailureWithoutDetailUsesFallback(t *testing.T) {
	api := &fakeAPI{loginErr: errors.New("dial tcp: refused")}
	s := NewSession(api, nil, nil, nil)

	require.Error(t, s.Login(context.Background(), "ana@example.com", "pw"))
	assert.Equal(t, msgLoginFailed, s.Error())
}

func TestLoginRejectsInvalidEmailLocally(t *testing.T) {
	api := &fakeAPI{token: "tok"}
	s := NewSession(api, nil, nil, nil)

	err := s.Login(context.Background(), "not-an-email", "pw")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 0, api.meCalls)
}

func TestRegisterDoesNotSignIn(t *testing.T) {
	s := NewSession(&fakeAPI{}, nil, nil, nil)

	user, err := s.Register(context.Background(), transport.RegisterRequest{Email: "new@example.com", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestRegisterFailureUsesFallback(t *testing.T) {
	s := NewSession(&fakeAPI{regErr: errors.New("boom")}, nil, nil, nil)

	_, err := s.Register(context.Background(), transport.RegisterRequest{Email: "new@example.com", Password: "secreto"})
	require.Error(t, err)
	assert.Equal(t, msgRegisterFailed, s.Error())
}

func TestHydrateLoadsProfile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	token := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, token))

	api := &fakeAPI{user: transport.User{ID: 1, Email: "ana@example.com"}}
	s := NewSession(api, store, nil, nil)

	require.NoError(t, s.Hydrate(ctx))
	assert.Equal(t, token, s.Token())
	assert.Equal(t, int64(1), s.User().ID)
}

func TestHydrateDropsExpiredTokenWithoutCallingAPI(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, signedToken(t, time.Now().Add(-time.Minute))))

	api := &fakeAPI{}
	s := NewSession(api, store, nil, nil)

	require.NoError(t, s.Hydrate(ctx))
	assert.Equal(t, 0, api.meCalls)
	assert.Empty(t, s.Token())
	saved, _ := store.Load(ctx)
	assert.Empty(t, saved)
}

func TestHydrateLogsOutWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "opaque-token"))

	s := NewSession(&fakeAPI{meErr: apperr.FromStatus(401, "Token inválido")}, store, nil, nil)

	require.Error(t, s.Hydrate(ctx))
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	saved, _ := store.Load(ctx)
	assert.Empty(t, saved)
}

func TestHydrateWithoutStoredToken(t *testing.T) {
	api := &fakeAPI{}
	s := NewSession(api, nil, nil, nil)

	require.NoError(t, s.Hydrate(context.Background()))
	assert.Equal(t, 0, api.meCalls)
}

func TestLogoutAndRefresh(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{token: "tok", user: transport.User{ID: 1, Email: "ana@example.com"}}
	s := NewSession(api, nil, nil, nil)
	require.NoError(t, s.Login(ctx, "ana@example.com", "pw"))

	api.user.Email = "ana.maria@example.com"
	require.NoError(t, s.RefreshUser(ctx))
	assert.Equal(t, "ana.maria@example.com", s.User().Email)

	require.NoError(t, s.Logout(ctx))
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())

	calls := api.meCalls
	require.NoError(t, s.RefreshUser(ctx))
	assert.Equal(t, calls, api.meCalls)
}

func TestAgencyIDRequirements(t *testing.T) {
	s := NewSession(&fakeAPI{token: "tok", user: transport.User{ID: 1, Email: "ana@example.com"}}, nil, nil, nil)

	_, err := s.AgencyID()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, s.Login(context.Background(), "ana@example.com", "pw"))
	_, err = s.AgencyID()
	require.Error(t, err)
	assert.Equal(t, "El usuario necesita agency_id para crear leads", apperr.UserMessage(err, ""))
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, TokenExpired(signedToken(t, now.Add(-time.Second)), now))
	assert.False(t, TokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.False(t, TokenExpired("not-a-jwt", now))
}
