// Package catalog holds the read-only doctor list, search filtering and the
// weekly availability resolver.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"doctor-booking-api/internal/model"
)

var (
	ErrDuplicateDoctor   = errors.New("duplicate doctor id")
	ErrInvalidDoctor     = errors.New("invalid doctor")
	ErrUnknownDoctor     = errors.New("doctor not found")
	ErrDoctorUnavailable = errors.New("doctor is not accepting bookings")
)

// Catalog is immutable after New returns.
type Catalog struct {
	doctors []model.Doctor
	byID    map[string]int
}

func New(doctors []model.Doctor) (*Catalog, error) {
	c := &Catalog{
		doctors: make([]model.Doctor, 0, len(doctors)),
		byID:    make(map[string]int, len(doctors)),
	}
	for _, d := range doctors {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: empty id for %q", ErrInvalidDoctor, d.Name)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDoctor, d.ID)
		}
		if d.Rating < 0 || d.Rating > 5 {
			return nil, fmt.Errorf("%w: %s rating %.1f outside 0-5", ErrInvalidDoctor, d.ID, d.Rating)
		}
		if d.Experience < 0 {
			return nil, fmt.Errorf("%w: %s negative experience", ErrInvalidDoctor, d.ID)
		}
		c.byID[d.ID] = len(c.doctors)
		c.doctors = append(c.doctors, cloneDoctor(d))
	}
	return c, nil
}

// All returns the doctors in dataset order.
func (c *Catalog) All() []model.Doctor {
	out := make([]model.Doctor, len(c.doctors))
	for i, d := range c.doctors {
		out[i] = cloneDoctor(d)
	}
	return out
}

func (c *Catalog) Get(id string) (model.Doctor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Doctor{}, false
	}
	return cloneDoctor(c.doctors[i]), true
}

func (c *Catalog) Len() int { return len(c.doctors) }

// Filter keeps doctors whose name or specialization contains term,
// ignoring case. An empty term returns doctors unchanged.
func Filter(doctors []model.Doctor, term string) []model.Doctor {
	if term == "" {
		return doctors
	}
	needle := strings.ToLower(term)
	out := make([]model.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if strings.Contains(strings.ToLower(d.Name), needle) ||
			strings.Contains(strings.ToLower(d.Specialization), needle) {
			out = append(out, d)
		}
	}
	return out
}

// Partition splits doctors by IsAvailable, keeping relative order in each group.
func Partition(doctors []model.Doctor) (available, unavailable []model.Doctor) {
	available = []model.Doctor{}
	unavailable = []model.Doctor{}
	for _, d := range doctors {
		if d.IsAvailable {
			available = append(available, d)
		} else {
			unavailable = append(unavailable, d)
		}
	}
	return available, unavailable
}

func cloneDoctor(d model.Doctor) model.Doctor {
	if d.Availability == nil {
		return d
	}
	avail := make(map[string][]string, len(d.Availability))
	for day, times := range d.Availability {
		avail[day] = append([]string(nil), times...)
	}
	d.Availability = avail
	return d
}
