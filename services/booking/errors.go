package booking

import (
	"errors"
	"fmt"
	"strings"

	"ctrlroom/database/repository"
	"ctrlroom/models"
	"ctrlroom/services/payment"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("requested interval is not available")
	ErrAlreadyConfirmed = errors.New("booking already confirmed with a different payment")
	ErrBookingCancelled = errors.New("booking is cancelled")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrInvalidInterval    = models.ErrInvalidInterval
	ErrGatewayUnavailable = payment.ErrGatewayUnavailable
)

// ConflictError carries the intervals that blocked a request.
type ConflictError struct {
	Reason    string
	Conflicts []models.TimeInterval
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("%v: %s", ErrConflict, e.Reason)
	}
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("%v: %s %s", ErrConflict, e.Reason, strings.Join(parts, " "))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InconsistencyError reports a booking that was stored but could not be
// reflected in the schedule index. A reconcile task has been queued for it.
type InconsistencyError struct {
	BookingID  string
	EngineerID string
	Date       string
	Err        error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("booking %s stored but schedule index for %s/%s not updated: %v", e.BookingID, e.EngineerID, e.Date, e.Err)
}

func (e *InconsistencyError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// storeErr maps a repository error into the service taxonomy.
func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
