package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ctrlroom/models"
	"ctrlroom/utils"
)

// ErrInvalidToken covers malformed, expired and badly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier turns a bearer token into the request principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// JWTAuthenticator issues and verifies HS256 session tokens for local accounts.
type JWTAuthenticator struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTAuthenticator(secret string, ttl time.Duration) (*JWTAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required when AUTH_PROVIDER=jwt")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTAuthenticator{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for u.
func (a *JWTAuthenticator) Issue(u *models.User) (string, error) {
	return utils.GenerateToken(a.secret, u.ID, u.Email, string(u.Role), a.ttl)
}

func (a *JWTAuthenticator) Verify(_ context.Context, token string) (Principal, error) {
	claims, err := utils.ValidateToken(a.secret, token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role := models.Role(stringClaim(claims, "role"))
	if sub == "" || !role.Valid() {
		return Principal{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}
	return Principal{UserID: sub, Email: email, Role: role}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
