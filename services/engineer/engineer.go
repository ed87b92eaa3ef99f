// Package engineer manages the engineer directory. Listings are cached in
// process for a short time; booking data never passes through here.
package engineer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"ctrlroom/database/repository"
	engineerRepo "ctrlroom/database/repository/engineer"
	"ctrlroom/models"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrNotFound         = errors.New("engineer not found")
	ErrInvalidEngineer  = errors.New("invalid engineer")
	ErrUserLinked       = errors.New("user is already linked to another engineer")
	ErrStoreUnavailable = errors.New("engineer store unavailable")
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
	listKey      = "engineers:all"
)

// Promoter gives a linked account the engineer role.
type Promoter interface {
	PromoteToEngineer(ctx context.Context, userID string) error
}

type Service struct {
	repo     engineerRepo.EngineerRepository
	promoter Promoter
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewService(repo engineerRepo.EngineerRepository, promoter Promoter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		promoter: promoter,
		cache:    cache.New(cacheTTL, cacheCleanup),
		logger:   logger,
	}
}

func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func idKey(id string) string { return "engineer:" + id }

// List returns all engineers sorted by name.
func (s *Service) List(ctx context.Context) ([]models.Engineer, error) {
	if cached, ok := s.cache.Get(listKey); ok {
		return slices.Clone(cached.([]models.Engineer)), nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list engineers", err)
	}
	slices.SortFunc(list, func(a, b models.Engineer) int { return strings.Compare(a.Name, b.Name) })
	s.cache.Set(listKey, slices.Clone(list), cache.DefaultExpiration)
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Engineer, error) {
	if cached, ok := s.cache.Get(idKey(id)); ok {
		e := cached.(models.Engineer)
		return &e, nil
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load engineer", err)
	}
	s.cache.Set(idKey(id), *e, cache.DefaultExpiration)
	return e, nil
}

func validate(in models.EngineerInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("%w: name and email are required", ErrInvalidEngineer)
	}
	if in.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly rate must not be negative", ErrInvalidEngineer)
	}
	if err := in.WorkingHours.Validate(); err != nil {
		return fmt.Errorf("%w: working hours: %w", ErrInvalidEngineer, err)
	}
	return nil
}

// Create adds an engineer. A linked user account is promoted to the engineer
// role so it can see its sessions.
func (s *Service) Create(ctx context.Context, in models.EngineerInput) (*models.Engineer, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := s.checkLink(ctx, in.UserID, ""); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	e := &models.Engineer{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Specialties:  in.Specialties,
		WorkingHours: in.WorkingHours,
		HourlyRate:   in.HourlyRate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, storeErr("create engineer", err)
	}
	s.cache.Delete(listKey)
	s.promote(ctx, e)
	s.logger.Info("Engineer created", zap.String("engineerID", e.ID), zap.String("name", e.Name))
	return e, nil
}

// Update replaces the editable fields of an engineer.
func (s *Service) Update(ctx context.Context, id string, in models.EngineerInput) (*models.Engineer, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load engineer", err)
	}
	if err := s.checkLink(ctx, in.UserID, id); err != nil {
		return nil, err
	}
	e.UserID = in.UserID
	e.Name = strings.TrimSpace(in.Name)
	e.Email = strings.ToLower(strings.TrimSpace(in.Email))
	e.Specialties = in.Specialties
	e.WorkingHours = in.WorkingHours
	e.HourlyRate = in.HourlyRate
	e.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, storeErr("update engineer", err)
	}
	s.cache.Delete(listKey)
	s.cache.Delete(idKey(id))
	s.promote(ctx, e)
	s.logger.Info("Engineer updated", zap.String("engineerID", e.ID))
	return e, nil
}

// checkLink rejects linking a user that already belongs to another engineer.
func (s *Service) checkLink(ctx context.Context, userID, self string) error {
	if userID == "" {
		return nil
	}
	other, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return storeErr("check linked user", err)
	case other.ID != self:
		return ErrUserLinked
	}
	return nil
}

func (s *Service) promote(ctx context.Context, e *models.Engineer) {
	if e.UserID == "" || s.promoter == nil {
		return
	}
	if err := s.promoter.PromoteToEngineer(ctx, e.UserID); err != nil {
		s.logger.Warn("Could not promote linked user", zap.String("engineerID", e.ID), zap.String("userID", e.UserID), zap.Error(err))
	}
}
