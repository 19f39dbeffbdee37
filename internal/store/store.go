// Package store keeps booked appointments in process memory. Appointments are
// append-only: nothing is updated or removed once booked.
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"doctor-booking-api/internal/clock"
	"doctor-booking-api/internal/model"
)

var ErrNotFound = errors.New("appointment not found")

type Store struct {
	mu    sync.RWMutex
	clock clock.Clock
	newID func() string
	appts []model.Appointment

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(model.Appointment)
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDFunc replaces the UUIDv7 generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(opts ...Option) *Store {
	s := &Store{
		clock: clock.Real(nil),
		newID: newV7,
		subs:  make(map[int]func(model.Appointment)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// v7 ids are time-ordered and monotonic within the process.
func newV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Subscribe registers fn to be called after every booked appointment.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(model.Appointment)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(a model.Appointment) {
	s.subMu.Lock()
	fns := make([]func(model.Appointment), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(a)
	}
}
