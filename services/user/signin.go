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

// Login checks the password of a local account and issues a new token.
func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if s.Tokens == nil {
		return nil, ErrLocalAuthDisabled
	}
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.Logger.Error("Login: failed to fetch user", zap.Error(err))
		return nil, storeErr("load user", err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u)
	if err != nil {
		s.Logger.Error("Login: failed to issue token", zap.String("userID", u.ID), zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	return &models.AuthResponse{Token: token, User: *u}, nil
}

func (s *DefaultUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr("load user", err)
	}
	return u, nil
}
