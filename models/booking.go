package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Booking represents one reservation of engineer time.
type Booking struct {
	ID               string        `json:"id"`
	EngineerID       string        `json:"engineerId"`
	ClientID         string        `json:"clientId"`
	Date             string        `json:"date"` // "YYYY-MM-DD"
	Interval         TimeInterval  `json:"interval"`
	DurationHours    int           `json:"durationHours"`
	Status           BookingStatus `json:"status"`
	TotalAmount      float64       `json:"totalAmount"` // fixed at creation, never recomputed
	Currency         string        `json:"currency"`
	PaymentReference string        `json:"paymentReference,omitempty"` // payment intent id once confirmed
	PaidAt           *time.Time    `json:"paidAt,omitempty"`
	IdempotencyKey   string        `json:"-"`
	CancelReason     string        `json:"cancelReason,omitempty"`
	CancelledAt      *time.Time    `json:"cancelledAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Active reports whether the booking still occupies its interval.
func (b Booking) Active() bool { return b.Status != StatusCancelled }

// StartsAt resolves the booking start to an absolute time in loc.
func (b Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return b.at(b.Interval.Start, loc)
}

// EndsAt resolves the booking end to an absolute time in loc.
func (b Booking) EndsAt(loc *time.Location) (time.Time, error) {
	return b.at(b.Interval.End, loc)
}

func (b Booking) at(m Minute, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, b.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(m) * time.Minute), nil
}

// CreateBookingRequest is the orchestrator input. ClientID is taken from the
// authenticated principal, never from the request body.
type CreateBookingRequest struct {
	EngineerID     string `json:"engineerId" binding:"required"`
	ClientID       string `json:"-"`
	Date           string `json:"date" binding:"required"`      // "YYYY-MM-DD"
	StartTime      string `json:"startTime" binding:"required"` // "HH:MM"
	DurationHours  int    `json:"durationHours" binding:"required"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// CheckAvailabilityRequest is the read-only pre-check payload.
type CheckAvailabilityRequest struct {
	EngineerID    string `json:"-"`
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"startTime" binding:"required"`
	DurationHours int    `json:"durationHours" binding:"required"`
}

// AvailabilitySnapshot is the derived list of free slots for one engineer and
// date. It is computed per request and never stored.
type AvailabilitySnapshot struct {
	EngineerID    string         `json:"engineerId"`
	Date          string         `json:"date"`
	WorkingHours  *TimeInterval  `json:"workingHours,omitempty"` // nil on a day off
	SlotMinutes   int            `json:"slotMinutes"`
	Slots         []TimeInterval `json:"slots"`
	NextAvailable *TimeInterval  `json:"nextAvailable"` // earliest free slot, nil when the day is full
}

// CancelBookingRequest carries an optional human-readable reason.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// PaymentIntentResponse is returned to the client to complete payment.
type PaymentIntentResponse struct {
	BookingID       string  `json:"bookingId"`
	PaymentIntentID string  `json:"paymentIntentId"`
	ClientSecret    string  `json:"clientSecret"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}
