package notification

import (
	"context"
	"errors"
	"fmt"

	"ctrlroom/database/repository"
	bookingRepo "ctrlroom/database/repository/booking"
	engineerRepo "ctrlroom/database/repository/engineer"
	userRepo "ctrlroom/database/repository/user"
	"ctrlroom/metrics"
	"ctrlroom/models"

	"go.uber.org/zap"
)

// ErrBookingGone means the booking to announce no longer exists or is not
// confirmed. Retrying will not help.
var ErrBookingGone = errors.New("booking not found or not confirmed")

// BookingNotifier announces confirmed bookings to the client and engineer.
type BookingNotifier struct {
	bookings   bookingRepo.BookingRepository
	engineers  engineerRepo.EngineerRepository
	users      userRepo.UserRepository
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewBookingNotifier(bookings bookingRepo.BookingRepository, engineers engineerRepo.EngineerRepository, users userRepo.UserRepository, d Dispatcher, logger *zap.Logger) *BookingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingNotifier{bookings: bookings, engineers: engineers, users: users, dispatcher: d, logger: logger}
}

// NotifyConfirmed sends the client confirmation and the engineer notice.
// Accounts without a device are skipped. Send failures are returned so the
// caller can retry.
func (n *BookingNotifier) NotifyConfirmed(ctx context.Context, bookingID string) error {
	b, err := n.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrBookingGone, bookingID)
	}
	if err != nil {
		return fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if b.Status != models.StatusConfirmed {
		return fmt.Errorf("%w: %s is %s", ErrBookingGone, bookingID, b.Status)
	}

	eng, err := n.engineers.GetByID(ctx, b.EngineerID)
	if err != nil {
		return fmt.Errorf("load engineer %s: %w", b.EngineerID, err)
	}

	data := map[string]string{
		"type":      "booking_confirmed",
		"bookingId": b.ID,
		"date":      b.Date,
		"start":     b.Interval.Start.String(),
	}

	var errs []error
	clientMsg := fmt.Sprintf("Your session with %s on %s at %s is confirmed.", eng.Name, b.Date, b.Interval.Start)
	if err := n.push(ctx, b.ClientID, "Booking confirmed", clientMsg, withRole(data, "client")); err != nil {
		errs = append(errs, err)
	}
	if eng.UserID == "" {
		metrics.IncNotification("skipped")
		n.logger.Info("Engineer has no linked account, skipping notice", zap.String("engineerId", eng.ID))
	} else {
		engMsg := fmt.Sprintf("New session booked on %s, %s-%s.", b.Date, b.Interval.Start, b.Interval.End)
		if err := n.push(ctx, eng.UserID, "New booking", engMsg, withRole(data, "engineer")); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *BookingNotifier) push(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := n.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.IncNotification("skipped")
		n.logger.Warn("Push target not found", zap.String("userId", userID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}
	err = n.dispatcher.Send(ctx, u.FCMToken, title, body, data)
	switch {
	case errors.Is(err, ErrNoDevice):
		metrics.IncNotification("skipped")
		n.logger.Info("No device registered, skipping push", zap.String("userId", userID))
		return nil
	case err != nil:
		metrics.IncNotification("failed")
		return fmt.Errorf("push to %s: %w", userID, err)
	}
	metrics.IncNotification("sent")
	return nil
}

func withRole(data map[string]string, role string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["role"] = role
	return out
}
