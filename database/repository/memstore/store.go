// Package memstore is an in-process implementation of every repository. Each
// call is atomic under one mutex, which gives it the same per-document
// guarantees the services rely on from MongoDB. Tests use Fail and Hook to
// inject store errors and to interleave concurrent callers.
package memstore

import (
	"sync"

	"ctrlroom/models"
)

// Operation names accepted by Fail and Hook.
const (
	OpEngineerGet     = "engineers.get"
	OpEngineerList    = "engineers.list"
	OpEngineerWrite   = "engineers.write"
	OpBookingCreate   = "bookings.create"
	OpBookingGet      = "bookings.get"
	OpBookingList     = "bookings.list"
	OpBookingListAct  = "bookings.listActive"
	OpBookingConfirm  = "bookings.confirm"
	OpBookingCancel   = "bookings.cancel"
	OpScheduleGet     = "schedules.get"
	OpScheduleClaim   = "schedules.claim"
	OpScheduleRelease = "schedules.release"
	OpScheduleReplace = "schedules.replace"
	OpUserGet         = "users.get"
	OpUserWrite       = "users.write"
	OpFileRead        = "files.read"
	OpFileWrite       = "files.write"
	OpStudioRead      = "studio.read"
	OpStudioWrite     = "studio.write"
)

// Store holds all entities in memory.
type Store struct {
	mu       sync.Mutex
	failures map[string]error
	hooks    map[string]func()

	engineers *Engineers
	bookings  *Bookings
	schedules *Schedules
	users     *Users
	files     *Files
	studio    *Studio
}

func New() *Store {
	s := &Store{
		failures: make(map[string]error),
		hooks:    make(map[string]func()),
	}
	s.engineers = &Engineers{s: s, data: make(map[string]models.Engineer)}
	s.bookings = &Bookings{s: s, data: make(map[string]models.Booking)}
	s.schedules = &Schedules{s: s, data: make(map[string][]models.ScheduleEntry)}
	s.users = &Users{s: s, data: make(map[string]models.User)}
	s.files = &Files{s: s, data: make(map[string]models.SessionFile)}
	s.studio = &Studio{s: s, resources: make(map[string]models.StudioResource)}
	return s
}

// Fail makes every later call of op return err. A nil err clears it.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Hook runs fn before every call of op, outside the store lock.
func (s *Store) Hook(op string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.hooks, op)
		return
	}
	s.hooks[op] = fn
}

// enter runs the hook for op and, if no failure is injected, returns with the
// lock held. On error the lock is not held.
func (s *Store) enter(op string) error {
	s.mu.Lock()
	hook := s.hooks[op]
	s.mu.Unlock()
	if hook != nil {
		hook()
	}

	s.mu.Lock()
	if err := s.failures[op]; err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) leave() { s.mu.Unlock() }

func (s *Store) Engineers() *Engineers { return s.engineers }
func (s *Store) Bookings() *Bookings   { return s.bookings }
func (s *Store) Schedules() *Schedules { return s.schedules }
func (s *Store) Users() *Users         { return s.users }
func (s *Store) Files() *Files         { return s.files }
func (s *Store) Studio() *Studio       { return s.studio }
