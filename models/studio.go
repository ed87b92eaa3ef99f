package models

import "time"

// StudioSettings holds the single studio profile record.
type StudioSettings struct {
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	HourlyRate     float64   `json:"hourlyRate"`   // studio rate per booked hour
	EngineerRate   float64   `json:"engineerRate"` // default engineer rate shown on the studio page
	BufferTime     int       `json:"bufferTime"`   // minutes between sessions, informational
	OperatingHours string    `json:"operatingHours"`
	DaysOpen       []string  `json:"daysOpen"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "available"
	ResourceMaintenance ResourceStatus = "maintenance"
	ResourceInUse       ResourceStatus = "in-use"
)

func (s ResourceStatus) Valid() bool {
	switch s {
	case ResourceAvailable, ResourceMaintenance, ResourceInUse:
		return true
	}
	return false
}

// StudioResource is a piece of equipment or a room tracked by the studio.
type StudioResource struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Status          ResourceStatus `json:"status"`
	LastMaintenance *time.Time     `json:"lastMaintenance,omitempty"`
	NextMaintenance *time.Time     `json:"nextMaintenance,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

type CreateResourceRequest struct {
	Name            string     `json:"name" binding:"required"`
	Category        string     `json:"category" binding:"required"`
	Status          string     `json:"status"`
	NextMaintenance *time.Time `json:"nextMaintenance"`
}

type UpdateResourceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
