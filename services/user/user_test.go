package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"ctrlroom/database/repository/memstore"
	"ctrlroom/models"
	"ctrlroom/services/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*DefaultUserService, *memstore.Store, *auth.JWTAuthenticator) {
	t.Helper()
	store := memstore.New()
	tokens, err := auth.NewJWTAuthenticator("test-secret", time.Hour)
	require.NoError(t, err)
	return NewUserService(store.Users(), tokens, []string{"Boss@Studio.test"}, nil), store, tokens
}

func TestSignupAndLogin(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, models.SignupRequest{Email: "Ana@Example.com", Password: "hunter22", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, models.RoleClient, resp.User.Role)

	p, err := tokens.Verify(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, p.UserID)

	_, err = svc.Signup(ctx, models.SignupRequest{Email: "ana@example.com", Password: "hunter22", DisplayName: "Ana 2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, models.LoginRequest{Email: "ANA@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "ana@example.com", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupRules(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "short1", DisplayName: "A"})
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = svc.Signup(ctx, models.SignupRequest{Email: "a@example.com", Password: "lettersonly", DisplayName: "A"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	admin, err := svc.Signup(ctx, models.SignupRequest{Email: "boss@studio.test", Password: "hunter22", DisplayName: "Boss"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.User.Role)

	svc.Tokens = nil
	_, err = svc.Login(ctx, models.LoginRequest{Email: "boss@studio.test", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrLocalAuthDisabled)
}

func TestRegisterDevice(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// unknown identity gets an account record
	p := auth.Principal{UserID: "fb-uid", Email: "fb@example.com", Role: models.RoleClient}
	require.NoError(t, svc.RegisterDevice(ctx, p, "tok-1"))
	u, err := store.Users().GetByID(ctx, "fb-uid")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", u.FCMToken)
	assert.Equal(t, "firebase", u.AuthProvider)

	require.NoError(t, svc.RegisterDevice(ctx, p, "tok-2"))
	u, err = store.Users().GetByID(ctx, "fb-uid")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", u.FCMToken)

	assert.Error(t, svc.RegisterDevice(ctx, p, ""))

	store.Fail(memstore.OpUserWrite, errors.New("down"))
	assert.ErrorIs(t, svc.RegisterDevice(ctx, p, "tok-3"), ErrStoreUnavailable)
}

func TestPromoteToEngineer(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	resp, err := svc.Signup(ctx, models.SignupRequest{Email: "eng@example.com", Password: "hunter22", DisplayName: "Eng"})
	require.NoError(t, err)

	require.NoError(t, svc.PromoteToEngineer(ctx, resp.User.ID))
	u, err := store.Users().GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEngineer, u.Role)

	assert.ErrorIs(t, svc.PromoteToEngineer(ctx, "missing"), ErrNotFound)
}
