package bookingRepo

import (
	"errors"
	"time"

	"ctrlroom/database/repository"
	"ctrlroom/models"
)

// bookingRecord is the stored shape of a booking.
type bookingRecord struct {
	ID               string     `bson:"id"`
	EngineerID       string     `bson:"engineerId"`
	ClientID         string     `bson:"clientId"`
	Date             string     `bson:"date"`      // "YYYY-MM-DD"
	Start            int        `bson:"start"`     // minutes from midnight
	End              int        `bson:"end"`       // minutes from midnight
	StartTime        string     `bson:"startTime"` // "HH:MM", sortable
	DurationHours    int        `bson:"durationHours"`
	Status           string     `bson:"status"`
	TotalAmount      float64    `bson:"totalAmount"`
	Currency         string     `bson:"currency"`
	PaymentReference string     `bson:"paymentReference,omitempty"`
	PaidAt           *time.Time `bson:"paidAt,omitempty"`
	IdempotencyKey   string     `bson:"idempotencyKey,omitempty"`
	CancelReason     string     `bson:"cancelReason,omitempty"`
	CancelledAt      *time.Time `bson:"cancelledAt,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

func newRecord(b *models.Booking) bookingRecord {
	return bookingRecord{
		ID:               b.ID,
		EngineerID:       b.EngineerID,
		ClientID:         b.ClientID,
		Date:             b.Date,
		Start:            int(b.Interval.Start),
		End:              int(b.Interval.End),
		StartTime:        b.Interval.Start.String(),
		DurationHours:    b.DurationHours,
		Status:           string(b.Status),
		TotalAmount:      b.TotalAmount,
		Currency:         b.Currency,
		PaymentReference: b.PaymentReference,
		PaidAt:           b.PaidAt,
		IdempotencyKey:   b.IdempotencyKey,
		CancelReason:     b.CancelReason,
		CancelledAt:      b.CancelledAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func (r bookingRecord) toModel() (*models.Booking, error) {
	if r.ID == "" || r.EngineerID == "" || r.ClientID == "" {
		return nil, repository.Malformed("bookings", r.ID, errors.New("missing identifier"))
	}
	if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
		return nil, repository.Malformed("bookings", r.ID, err)
	}
	iv, err := models.NewTimeInterval(models.Minute(r.Start), models.Minute(r.End))
	if err != nil {
		return nil, repository.Malformed("bookings", r.ID, err)
	}
	status := models.BookingStatus(r.Status)
	if !status.Valid() {
		return nil, repository.Malformed("bookings", r.ID, errors.New("unknown status "+r.Status))
	}
	return &models.Booking{
		ID:               r.ID,
		EngineerID:       r.EngineerID,
		ClientID:         r.ClientID,
		Date:             r.Date,
		Interval:         iv,
		DurationHours:    r.DurationHours,
		Status:           status,
		TotalAmount:      r.TotalAmount,
		Currency:         r.Currency,
		PaymentReference: r.PaymentReference,
		PaidAt:           r.PaidAt,
		IdempotencyKey:   r.IdempotencyKey,
		CancelReason:     r.CancelReason,
		CancelledAt:      r.CancelledAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}
