package booking

import (
	"context"
	"fmt"
	"sort"

	"ctrlroom/models"
)

const (
	TabUpcoming  = "upcoming"
	TabCompleted = "completed"
	TabCancelled = "cancelled"
)

// ListSessions returns the caller's bookings for one tab. Engineers see the
// bookings made with them, everyone else the bookings they made.
func (s *Service) ListSessions(ctx context.Context, tab string) ([]models.Booking, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if tab == "" {
		tab = TabUpcoming
	}
	switch tab {
	case TabUpcoming, TabCompleted, TabCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown tab %q", ErrInvalidRequest, tab)
	}

	var all []models.Booking
	if p.Role == models.RoleEngineer {
		e, err := s.engineers.GetByUserID(ctx, p.UserID)
		if err != nil {
			return nil, storeErr("load engineer profile", err)
		}
		all, err = s.bookings.ListByEngineer(ctx, e.ID)
		if err != nil {
			return nil, storeErr("list bookings", err)
		}
	} else {
		all, err = s.bookings.ListByClient(ctx, p.UserID)
		if err != nil {
			return nil, storeErr("list bookings", err)
		}
	}

	now := s.now()
	out := make([]models.Booking, 0, len(all))
	for _, b := range all {
		start, err := b.StartsAt(s.policy.Location)
		if err != nil {
			continue
		}
		end, _ := b.EndsAt(s.policy.Location)
		switch tab {
		case TabUpcoming:
			if b.Active() && !start.Before(now) {
				out = append(out, b)
			}
		case TabCompleted:
			if b.Status == models.StatusConfirmed && end.Before(now) {
				out = append(out, b)
			}
		case TabCancelled:
			if b.Status == models.StatusCancelled {
				out = append(out, b)
			}
		}
	}

	// upcoming soonest first, the other tabs most recent first
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if tab != TabUpcoming {
			a, b = b, a
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Interval.Start < b.Interval.Start
	})
	return out, nil
}
