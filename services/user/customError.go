package user

import (
	"errors"
	"fmt"

	"ctrlroom/database/repository"
)

var (
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrLocalAuthDisabled  = errors.New("email and password sign-in is disabled")
	ErrNotFound           = errors.New("user not found")
	ErrStoreUnavailable   = errors.New("user store unavailable")
)

func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
