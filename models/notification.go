package models

// BookingNotifyPayload is the queued job emitted after a booking is confirmed.
type BookingNotifyPayload struct {
	BookingID string `json:"bookingId"`
}

// ReconcilePayload asks the worker to rebuild one schedule index.
type ReconcilePayload struct {
	EngineerID string `json:"engineerId"`
	Date       string `json:"date"`
	BookingID  string `json:"bookingId,omitempty"` // booking that triggered the repair, for logs
}
