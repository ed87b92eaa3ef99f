package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ctrlroom/database/repository"
	studioRepo "ctrlroom/database/repository/studio"
	"ctrlroom/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidSettings  = errors.New("invalid studio settings")
	ErrInvalidResource  = errors.New("invalid studio resource")
	ErrNotFound         = errors.New("resource not found")
	ErrStoreUnavailable = errors.New("studio store unavailable")
)

// Defaults are returned while no settings have been saved.
type Defaults struct {
	HourlyRate   float64
	EngineerRate float64
}

type Service struct {
	repo     studioRepo.StudioRepository
	defaults Defaults
	logger   *zap.Logger
}

func NewService(repo studioRepo.StudioRepository, defaults Defaults, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, defaults: defaults, logger: logger}
}

func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func (s *Service) GetSettings(ctx context.Context) (*models.StudioSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.StudioSettings{
			HourlyRate:   s.defaults.HourlyRate,
			EngineerRate: s.defaults.EngineerRate,
			DaysOpen:     []string{},
		}, nil
	}
	if err != nil {
		return nil, storeErr("load settings", err)
	}
	return settings, nil
}

// UpdateSettings replaces the studio profile. The hourly rate applies to
// bookings created afterwards; existing totals never change.
func (s *Service) UpdateSettings(ctx context.Context, in models.StudioSettings) (*models.StudioSettings, error) {
	if in.HourlyRate < 0 || in.EngineerRate < 0 || in.BufferTime < 0 {
		return nil, fmt.Errorf("%w: rates and buffer time must not be negative", ErrInvalidSettings)
	}
	days := make([]string, 0, len(in.DaysOpen))
	for _, d := range in.DaysOpen {
		d = strings.ToLower(strings.TrimSpace(d))
		if !models.IsWeekday(d) {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSettings, d)
		}
		days = append(days, d)
	}
	in.DaysOpen = days
	in.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveSettings(ctx, &in); err != nil {
		return nil, storeErr("save settings", err)
	}
	s.logger.Info("Studio settings updated", zap.Float64("hourlyRate", in.HourlyRate))
	return &in, nil
}

func (s *Service) ListResources(ctx context.Context) ([]models.StudioResource, error) {
	list, err := s.repo.ListResources(ctx)
	if err != nil {
		return nil, storeErr("list resources", err)
	}
	return list, nil
}

func (s *Service) CreateResource(ctx context.Context, req models.CreateResourceRequest) (*models.StudioResource, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrInvalidResource)
	}
	status := models.ResourceStatus(req.Status)
	if status == "" {
		status = models.ResourceAvailable
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidResource, req.Status)
	}
	res := &models.StudioResource{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(req.Name),
		Category:        strings.TrimSpace(req.Category),
		Status:          status,
		NextMaintenance: req.NextMaintenance,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.CreateResource(ctx, res); err != nil {
		return nil, storeErr("create resource", err)
	}
	return res, nil
}

// UpdateResourceStatus moves a resource between available, maintenance and
// in-use. Entering maintenance stamps lastMaintenance.
func (s *Service) UpdateResourceStatus(ctx context.Context, id, status string) (*models.StudioResource, error) {
	st := models.ResourceStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidResource, status)
	}
	res, err := s.repo.UpdateResourceStatus(ctx, id, st, time.Now().UTC())
	if err != nil {
		return nil, storeErr("update resource", err)
	}
	s.logger.Info("Resource status changed", zap.String("resourceID", id), zap.String("status", status))
	return res, nil
}
