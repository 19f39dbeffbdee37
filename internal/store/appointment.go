package store

import (
	"context"

	"doctor-booking-api/internal/model"
)

// BookAppointment appends a confirmed appointment built from req.
// The doctor id is stored as given; callers decide whether it must exist.
func (s *Store) BookAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := model.Appointment{
		ID:           s.newID(),
		DoctorID:     req.DoctorID,
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		Date:         req.Date,
		Time:         req.Time,
		Status:       model.StatusConfirmed,
		CreatedAt:    s.clock.Now().UTC(),
	}

	s.mu.Lock()
	s.appts = append(s.appts, a)
	s.mu.Unlock()

	s.publish(a)
	return &a, nil
}

// ListAppointments returns every appointment, oldest first.
func (s *Store) ListAppointments() []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Appointment, len(s.appts))
	copy(out, s.appts)
	return out
}

func (s *Store) ListByDoctor(doctorID string) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Appointment{}
	for _, a := range s.appts {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) GetAppointment(id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.appts {
		if s.appts[i].ID == id {
			a := s.appts[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appts)
}
