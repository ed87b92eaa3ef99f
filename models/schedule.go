package models

import "time"

// ScheduleEntry is one booked slot inside an engineer's per-date index.
type ScheduleEntry struct {
	BookingID string       `json:"bookingId"`
	ClientID  string       `json:"clientId"`
	Interval  TimeInterval `json:"interval"`
}

// ScheduleIndex is the derived per-engineer, per-date summary of booked slots.
// Bookings stay the source of truth; the index is used for display and as the
// conditional-write guard when claiming an interval.
type ScheduleIndex struct {
	EngineerID string          `json:"engineerId"`
	Date       string          `json:"date"`
	Entries    []ScheduleEntry `json:"entries"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ScheduleKey is the document key of the index for (engineerID, date).
func ScheduleKey(engineerID, date string) string {
	return engineerID + "_" + date
}
