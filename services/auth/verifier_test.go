package auth

import (
	"context"
	"testing"
	"time"

	"ctrlroom/models"
	"ctrlroom/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	a, err := NewJWTAuthenticator("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue(&models.User{ID: "u1", Email: "a@b.c", Role: models.RoleEngineer})
	require.NoError(t, err)

	p, err := a.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: "u1", Email: "a@b.c", Role: models.RoleEngineer}, p)
}

func TestJWTRejects(t *testing.T) {
	a, err := NewJWTAuthenticator("s3cret", time.Hour)
	require.NoError(t, err)
	secret := []byte("s3cret")

	expired, err := utils.GenerateToken(secret, "u1", "a@b.c", "client", -time.Minute)
	require.NoError(t, err)
	otherKey, err := utils.GenerateToken([]byte("other"), "u1", "a@b.c", "client", time.Hour)
	require.NoError(t, err)
	noRole, err := utils.GenerateToken(secret, "u1", "a@b.c", "superuser", time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": otherKey,
		"unknown role": noRole,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = NewJWTAuthenticator("", time.Hour)
	assert.Error(t, err)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok, "empty principal is not authenticated")

	ctx := WithPrincipal(context.Background(), Principal{UserID: "u1", Role: models.RoleAdmin})
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.True(t, p.IsAdmin())
}
