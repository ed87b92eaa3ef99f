package userRepo

import (
	"context"

	"ctrlroom/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts a new user record; a taken email is repository.ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	// SetFCMToken stores the push token of the user's current device.
	SetFCMToken(ctx context.Context, id, token string) error
	// SetRole changes the account role, e.g. when an engineer profile is linked.
	SetRole(ctx context.Context, id string, role models.Role) error
}
