package user

import (
	"context"
	"strings"

	userRepo "ctrlroom/database/repository/user"
	"ctrlroom/models"
	"ctrlroom/services/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	// Local accounts, only when AUTH_PROVIDER=jwt
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// RegisterDevice stores the caller's FCM token, creating the account
	// record on first contact for externally managed identities.
	RegisterDevice(ctx context.Context, p auth.Principal, fcmToken string) error
	// PromoteToEngineer gives an account the engineer role.
	PromoteToEngineer(ctx context.Context, userID string) error
}

// TokenIssuer signs session tokens for local accounts.
type TokenIssuer interface {
	Issue(u *models.User) (string, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo        userRepo.UserRepository
	Tokens      TokenIssuer // nil disables signup and login
	AdminEmails []string
	Logger      *zap.Logger
	NewID       func() string
}

func NewUserService(repo userRepo.UserRepository, tokens TokenIssuer, adminEmails []string, logger *zap.Logger) *DefaultUserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultUserService{
		Repo:        repo,
		Tokens:      tokens,
		AdminEmails: adminEmails,
		Logger:      logger,
		NewID:       func() string { return uuid.New().String() },
	}
}

func (s *DefaultUserService) roleFor(email string) models.Role {
	for _, admin := range s.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return models.RoleAdmin
		}
	}
	return models.RoleClient
}
