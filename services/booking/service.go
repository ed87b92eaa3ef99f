package booking

import (
	"slices"
	"time"

	"ctrlroom/config"
	bookingRepo "ctrlroom/database/repository/booking"
	engineerRepo "ctrlroom/database/repository/engineer"
	scheduleRepo "ctrlroom/database/repository/schedule"
	studioRepo "ctrlroom/database/repository/studio"
	"ctrlroom/services/payment"
	"ctrlroom/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Policy holds the booking rules that come from configuration.
type Policy struct {
	StudioHourlyRate    float64
	DefaultEngineerRate float64
	AllowedDurations    []int // whole hours
	SlotMinutes         int   // default grid for availability listings
	Currency            string
	Location            *time.Location
}

// PolicyFromConfig builds the policy from the loaded application config.
func PolicyFromConfig(cfg config.Config) Policy {
	return Policy{
		StudioHourlyRate:    cfg.StudioHourlyRate,
		DefaultEngineerRate: cfg.DefaultEngineerRate,
		AllowedDurations:    cfg.AllowedDurations(),
		SlotMinutes:         cfg.SlotLengthMinutes,
		Currency:            cfg.Currency,
		Location:            time.UTC,
	}
}

func (p Policy) allows(hours int) bool {
	return slices.Contains(p.AllowedDurations, hours)
}

// Deps wires the service to its collaborators.
type Deps struct {
	Bookings  bookingRepo.BookingRepository
	Engineers engineerRepo.EngineerRepository
	Schedules scheduleRepo.ScheduleRepository
	Studio    studioRepo.StudioRepository
	Queue     tasks.Queue
	Gateway   payment.Gateway
	Policy    Policy
	Logger    *zap.Logger

	Now   func() time.Time
	NewID func() string
}

// Service implements booking creation, confirmation and the reads around
// them. It keeps no booking state between calls.
type Service struct {
	bookings  bookingRepo.BookingRepository
	engineers engineerRepo.EngineerRepository
	schedules scheduleRepo.ScheduleRepository
	studio    studioRepo.StudioRepository
	queue     tasks.Queue
	gateway   payment.Gateway
	policy    Policy
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(d Deps) *Service {
	s := &Service{
		bookings:  d.Bookings,
		engineers: d.Engineers,
		schedules: d.Schedules,
		studio:    d.Studio,
		queue:     d.Queue,
		gateway:   d.Gateway,
		policy:    d.Policy,
		logger:    d.Logger,
		now:       d.Now,
		newID:     d.NewID,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	if s.policy.Location == nil {
		s.policy.Location = time.UTC
	}
	if s.policy.Currency == "" {
		s.policy.Currency = "usd"
	}
	return s
}
