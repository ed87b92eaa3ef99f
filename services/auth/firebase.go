package auth

import (
	"context"
	"fmt"

	"ctrlroom/models"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseVerifier accepts Firebase ID tokens. The role comes from the "role"
// custom claim and defaults to client.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	role := models.Role(stringClaim(tok.Claims, "role"))
	if !role.Valid() {
		role = models.RoleClient
	}
	return Principal{UserID: tok.UID, Email: stringClaim(tok.Claims, "email"), Role: role}, nil
}
