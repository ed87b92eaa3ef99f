package user

import (
	"context"
	"errors"
	"fmt"

	"ctrlroom/database/repository"
	"ctrlroom/models"
	"ctrlroom/services/auth"

	"go.uber.org/zap"
)

func (s *DefaultUserService) RegisterDevice(ctx context.Context, p auth.Principal, fcmToken string) error {
	if fcmToken == "" {
		return fmt.Errorf("fcmToken is required")
	}
	err := s.Repo.SetFCMToken(ctx, p.UserID, fcmToken)
	if !errors.Is(err, repository.ErrNotFound) {
		if err != nil {
			return storeErr("store device token", err)
		}
		return nil
	}

	// First contact of an identity managed by Firebase.
	u := &models.User{
		ID:           p.UserID,
		Email:        p.Email,
		DisplayName:  p.Email,
		Role:         p.Role,
		FCMToken:     fcmToken,
		AuthProvider: "firebase",
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// created concurrently
			return s.Repo.SetFCMToken(ctx, p.UserID, fcmToken)
		}
		return storeErr("create user", err)
	}
	s.Logger.Info("Created account record for external identity", zap.String("userID", p.UserID))
	return nil
}

func (s *DefaultUserService) PromoteToEngineer(ctx context.Context, userID string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return storeErr("load user", err)
	}
	if u.Role != models.RoleClient {
		return nil
	}
	if err := s.Repo.SetRole(ctx, userID, models.RoleEngineer); err != nil {
		return storeErr("set role", err)
	}
	s.Logger.Info("User promoted to engineer", zap.String("userID", userID))
	return nil
}
