package booking

import (
	"context"
	"errors"
	"math"

	"ctrlroom/database/repository"
	"ctrlroom/models"
)

// Quote is the price breakdown of one booking.
type Quote struct {
	StudioRate   float64 `json:"studioRate"`
	EngineerRate float64 `json:"engineerRate"`
	Hours        int     `json:"hours"`
	Total        float64 `json:"total"`
	Currency     string  `json:"currency"`
}

// CalculateTotal returns (studioRate + engineerRate) * hours, rounded to cents.
func CalculateTotal(studioRate, engineerRate float64, hours int) float64 {
	return math.Round((studioRate+engineerRate)*float64(hours)*100) / 100
}

// studioRate prefers the stored studio settings over the configured default.
func (s *Service) studioRate(ctx context.Context) (float64, error) {
	if s.studio == nil {
		return s.policy.StudioHourlyRate, nil
	}
	settings, err := s.studio.GetSettings(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.policy.StudioHourlyRate, nil
	case err != nil:
		return 0, storeErr("load studio settings", err)
	case settings.HourlyRate > 0:
		return settings.HourlyRate, nil
	default:
		return s.policy.StudioHourlyRate, nil
	}
}

func (s *Service) engineerRate(e *models.Engineer) float64 {
	if e.HourlyRate > 0 {
		return e.HourlyRate
	}
	return s.policy.DefaultEngineerRate
}

func (s *Service) quote(ctx context.Context, e *models.Engineer, hours int) (Quote, error) {
	studio, err := s.studioRate(ctx)
	if err != nil {
		return Quote{}, err
	}
	eng := s.engineerRate(e)
	return Quote{
		StudioRate:   studio,
		EngineerRate: eng,
		Hours:        hours,
		Total:        CalculateTotal(studio, eng, hours),
		Currency:     s.policy.Currency,
	}, nil
}

// QuoteBooking prices a prospective booking without reserving anything.
func (s *Service) QuoteBooking(ctx context.Context, engineerID string, hours int) (Quote, error) {
	if !s.policy.allows(hours) {
		return Quote{}, ErrInvalidInterval
	}
	e, err := s.engineers.GetByID(ctx, engineerID)
	if err != nil {
		return Quote{}, storeErr("load engineer", err)
	}
	return s.quote(ctx, e, hours)
}
