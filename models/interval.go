package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every TimeInterval; intervals never cross midnight.
const MinutesPerDay = 1440

// DateLayout is the calendar-date format used for booking dates and index keys.
const DateLayout = "2006-01-02"

// ErrInvalidInterval reports a malformed interval, clock string or slot parameter.
var ErrInvalidInterval = errors.New("invalid interval")

// Minute is a count of minutes since midnight.
type Minute int

// ParseClock parses a zero-padded "HH:MM" string.
func ParseClock(s string) (Minute, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: clock %q is not HH:MM", ErrInvalidInterval, s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidInterval, s)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidInterval, s)
	}
	return Minute(h*60 + m), nil
}

// String renders the minute as "HH:MM". Values outside the day are clamped.
func (m Minute) String() string {
	if m < 0 {
		m = 0
	}
	if m >= MinutesPerDay {
		m = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// TimeInterval is the half-open range [Start, End) within one calendar day.
type TimeInterval struct {
	Start Minute `bson:"start" json:"-"`
	End   Minute `bson:"end" json:"-"`
}

// NewTimeInterval builds an interval and enforces 0 <= start < end < 1440.
func NewTimeInterval(start, end Minute) (TimeInterval, error) {
	iv := TimeInterval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return TimeInterval{}, err
	}
	return iv, nil
}

// ParseInterval builds an interval from "HH:MM" bounds.
func ParseInterval(start, end string) (TimeInterval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeInterval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeInterval{}, err
	}
	return NewTimeInterval(s, e)
}

// MustInterval is NewTimeInterval for literals known to be valid.
func MustInterval(start, end string) TimeInterval {
	iv, err := ParseInterval(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

func (iv TimeInterval) Validate() error {
	if iv.Start < 0 || iv.Start >= MinutesPerDay || iv.End < 0 || iv.End >= MinutesPerDay {
		return fmt.Errorf("%w: [%d,%d) outside the day", ErrInvalidInterval, iv.Start, iv.End)
	}
	if iv.End <= iv.Start {
		return fmt.Errorf("%w: end %s not after start %s", ErrInvalidInterval, iv.End, iv.Start)
	}
	return nil
}

// Duration returns the interval length in minutes.
func (iv TimeInterval) Duration() Minute { return iv.End - iv.Start }

// Contains reports whether other lies entirely inside iv.
func (iv TimeInterval) Contains(other TimeInterval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

func (iv TimeInterval) String() string {
	return "[" + iv.Start.String() + "," + iv.End.String() + ")"
}

// Overlaps reports whether two half-open intervals share any minute.
// Back-to-back intervals (a.End == b.Start) do not overlap.
func Overlaps(a, b TimeInterval) bool {
	return a.Start < b.End && b.Start < a.End
}

type intervalJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (iv TimeInterval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{Start: iv.Start.String(), End: iv.End.String()})
}

func (iv *TimeInterval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	parsed, err := ParseInterval(strings.TrimSpace(raw.Start), strings.TrimSpace(raw.End))
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}
