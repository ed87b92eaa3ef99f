package models

import (
	"fmt"
	"strings"
	"time"
)

// ErrInvalidWeekday is returned for unknown weekday names in working hours.
var ErrInvalidWeekday = fmt.Errorf("%w: unknown weekday", ErrInvalidInterval)

// WorkingHours defines the bookable window of an engineer per day of week.
type WorkingHours struct {
	Default   TimeInterval            `json:"default"`             // applies to every open day without an override
	Overrides map[string]TimeInterval `json:"overrides,omitempty"` // keyed by lower-case weekday, e.g. "saturday"
	DaysOff   []string                `json:"daysOff,omitempty"`   // lower-case weekdays with no bookable time
}

// For returns the working interval for the given date, or false on a day off.
func (w WorkingHours) For(date time.Time) (TimeInterval, bool) {
	day := strings.ToLower(date.Weekday().String())
	for _, off := range w.DaysOff {
		if strings.EqualFold(off, day) {
			return TimeInterval{}, false
		}
	}
	if iv, ok := w.Overrides[day]; ok {
		return iv, true
	}
	if w.Default.Validate() != nil {
		return TimeInterval{}, false
	}
	return w.Default, true
}

// Validate checks every interval and weekday name.
func (w WorkingHours) Validate() error {
	if err := w.Default.Validate(); err != nil {
		return err
	}
	for day, iv := range w.Overrides {
		if !IsWeekday(day) {
			return ErrInvalidWeekday
		}
		if err := iv.Validate(); err != nil {
			return err
		}
	}
	for _, day := range w.DaysOff {
		if !IsWeekday(day) {
			return ErrInvalidWeekday
		}
	}
	return nil
}

// IsWeekday accepts lower-case English weekday names.
func IsWeekday(s string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == s {
			return true
		}
	}
	return false
}

// Engineer is a recording engineer that clients book time with.
type Engineer struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId,omitempty"` // linked account for engineer logins
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Specialties  []string     `json:"specialties,omitempty"`
	WorkingHours WorkingHours `json:"workingHours"`
	HourlyRate   float64      `json:"hourlyRate"` // zero falls back to the configured default
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// EngineerInput is the admin payload for creating or updating an engineer.
type EngineerInput struct {
	Name         string       `json:"name" binding:"required"`
	Email        string       `json:"email" binding:"required,email"`
	UserID       string       `json:"userId"`
	Specialties  []string     `json:"specialties"`
	WorkingHours WorkingHours `json:"workingHours" binding:"required"`
	HourlyRate   float64      `json:"hourlyRate" binding:"gte=0"`
}
