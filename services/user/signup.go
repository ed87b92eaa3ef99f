package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ctrlroom/database/repository"
	"ctrlroom/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Signup creates a local account and returns a session token for it.
func (s *DefaultUserService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if s.Tokens == nil {
		return nil, ErrLocalAuthDisabled
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.DisplayName) == "" {
		return nil, fmt.Errorf("email and display name are required")
	}
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error("Signup: failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	u := &models.User{
		ID:           s.NewID(),
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         s.roleFor(email),
		PasswordHash: string(hashed),
		AuthProvider: "local",
		Phone:        req.Phone,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		s.Logger.Error("Signup: failed to create user", zap.String("email", email), zap.Error(err))
		return nil, storeErr("create user", err)
	}

	token, err := s.Tokens.Issue(u)
	if err != nil {
		s.Logger.Error("Signup: failed to issue token", zap.String("userID", u.ID), zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}
	s.Logger.Info("User registered", zap.String("userID", u.ID), zap.String("role", string(u.Role)))
	return &models.AuthResponse{Token: token, User: *u}, nil
}
