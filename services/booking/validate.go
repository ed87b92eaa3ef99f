package booking

import (
	"fmt"
	"strings"
	"time"

	"ctrlroom/models"
)

func (s *Service) parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(date), s.policy.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInterval, date)
	}
	return day, nil
}

// candidate turns (date, "HH:MM", hours) into the requested interval. It does
// no I/O and rejects anything that crosses midnight, uses a duration outside
// the allowed set, or starts in the past.
func (s *Service) candidate(date, startTime string, hours int) (models.TimeInterval, time.Time, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return models.TimeInterval{}, time.Time{}, err
	}
	if !s.policy.allows(hours) {
		return models.TimeInterval{}, time.Time{}, fmt.Errorf("%w: duration %dh not in %v", ErrInvalidInterval, hours, s.policy.AllowedDurations)
	}
	start, err := models.ParseClock(strings.TrimSpace(startTime))
	if err != nil {
		return models.TimeInterval{}, time.Time{}, err
	}
	iv, err := models.NewTimeInterval(start, start+models.Minute(hours*60))
	if err != nil {
		return models.TimeInterval{}, time.Time{}, err
	}
	if day.Add(time.Duration(iv.Start) * time.Minute).Before(s.now().In(s.policy.Location)) {
		return models.TimeInterval{}, time.Time{}, fmt.Errorf("%w: %s %s is in the past", ErrInvalidInterval, date, iv)
	}
	return iv, day, nil
}

func intervalsOf(bookings []models.Booking) []models.TimeInterval {
	out := make([]models.TimeInterval, 0, len(bookings))
	for _, b := range bookings {
		if b.Active() {
			out = append(out, b.Interval)
		}
	}
	return out
}
