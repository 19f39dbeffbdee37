// Package app ties the doctor catalog, the appointment store and booking
// sessions together behind the operations the transports expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"doctor-booking-api/internal/catalog"
	"doctor-booking-api/internal/clock"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/notify"
	"doctor-booking-api/internal/store"
	"doctor-booking-api/internal/validation"
	"doctor-booking-api/internal/workflow"
)

var (
	ErrUnknownDoctor     = catalog.ErrUnknownDoctor
	ErrDoctorUnavailable = catalog.ErrDoctorUnavailable
	ErrNoAppointment     = store.ErrNotFound
)

// InvalidRequestError carries per-field validation messages for a direct
// booking.
type InvalidRequestError struct {
	Errors validation.Errors
}

func (e *InvalidRequestError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e.Errors[f])
	}
	return "invalid booking request: " + strings.Join(msgs, "; ")
}

// Results is a search outcome split for display.
type Results struct {
	Available   []model.Doctor `json:"available"`
	Unavailable []model.Doctor `json:"unavailable"`
}

func (r Results) Total() int { return len(r.Available) + len(r.Unavailable) }

// DoctorList is a search outcome as the transports render it.
type DoctorList struct {
	SearchTerm string `json:"searchTerm"`
	Total      int    `json:"total"`
	Results
}

type Slot struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

type SlotList struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	Weekday  string `json:"weekday,omitempty"`
	Slots    []Slot `json:"slots"`
}

type App struct {
	catalog  *catalog.Catalog
	store    *store.Store
	notifier notify.Notifier
	log      zerolog.Logger
	clock    clock.Clock
	sessions *workflow.Registry
	sessOpts []workflow.Option

	mu   sync.RWMutex
	term string
}

type Option func(*App)

func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.log = l }
}

func WithClock(c clock.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithSessionOptions are applied to every session NewSession creates.
func WithSessionOptions(opts ...workflow.Option) Option {
	return func(a *App) { a.sessOpts = append(a.sessOpts, opts...) }
}

func New(c *catalog.Catalog, s *store.Store, opts ...Option) *App {
	a := &App{
		catalog:  c,
		store:    s,
		notifier: notify.Nop{},
		log:      zerolog.Nop(),
		clock:    clock.Real(nil),
		sessions: workflow.NewRegistry(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *App) Store() *store.Store { return a.store }

func (a *App) Sessions() *workflow.Registry { return a.sessions }

func (a *App) SetSearchTerm(term string) {
	a.mu.Lock()
	a.term = term
	a.mu.Unlock()
}

func (a *App) SearchTerm() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.term
}

// Search filters the catalog by term without touching the stored term.
func (a *App) Search(term string) Results {
	avail, unavail := catalog.Partition(catalog.Filter(a.catalog.All(), term))
	return Results{Available: avail, Unavailable: unavail}
}

// List searches with term and labels the result with it.
func (a *App) List(term string) DoctorList {
	return newDoctorList(term, a.Search(term))
}

// Listing is List for the stored term. Term and results come from a single
// read of the term.
func (a *App) Listing() DoctorList {
	a.mu.RLock()
	term := a.term
	a.mu.RUnlock()
	return newDoctorList(term, a.Search(term))
}

func newDoctorList(term string, r Results) DoctorList {
	return DoctorList{SearchTerm: term, Total: r.Total(), Results: r}
}

func (a *App) Doctor(id string) (model.Doctor, error) {
	d, ok := a.catalog.Get(id)
	if !ok {
		return model.Doctor{}, fmt.Errorf("%w: %q", ErrUnknownDoctor, id)
	}
	return d, nil
}

func (a *App) Slots(doctorID, date string) ([]string, error) {
	d, err := a.Doctor(doctorID)
	if err != nil {
		return nil, err
	}
	return catalog.ResolveSlots(d, date), nil
}

// SlotList resolves the slots for date with display labels.
func (a *App) SlotList(doctorID, date string) (SlotList, error) {
	times, err := a.Slots(doctorID, date)
	if err != nil {
		return SlotList{}, err
	}
	out := SlotList{DoctorID: doctorID, Date: date, Slots: make([]Slot, 0, len(times))}
	if wd, ok := catalog.Weekday(date); ok {
		out.Weekday = wd
	}
	for _, t := range times {
		out.Slots = append(out.Slots, Slot{Time: t, Label: validation.FormatTime(t)})
	}
	return out, nil
}

// BookAppointment records a booking for a known, available doctor and sends
// the confirmation. It does not validate the form; sessions and Book do.
func (a *App) BookAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	d, err := a.Doctor(req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !d.IsAvailable {
		return nil, ErrDoctorUnavailable
	}

	appt, err := a.store.BookAppointment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	a.log.Info().
		Str("appointment_id", appt.ID).
		Str("doctor_id", appt.DoctorID).
		Str("date", appt.Date).
		Str("time", appt.Time).
		Msg("appointment booked")

	if err := a.notifier.AppointmentConfirmed(ctx, *appt, d); err != nil {
		a.log.Warn().Err(err).Str("appointment_id", appt.ID).Msg("confirmation not sent")
	}
	return appt, nil
}

// Book validates req the same way a booking session does and books it
// immediately.
func (a *App) Book(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	d, err := a.Doctor(req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !d.IsAvailable {
		return nil, ErrDoctorUnavailable
	}
	errs := validation.Validate(req.PatientName, req.PatientEmail, req.Date, req.Time, a.clock.Now())
	if req.Time != "" && !errs.Has(validation.FieldDate) && !catalog.Offers(d, req.Date, req.Time) {
		errs[validation.FieldTime] = "Selected time is not available on this date"
	}
	if !errs.Empty() {
		return nil, &InvalidRequestError{Errors: errs}
	}
	return a.BookAppointment(ctx, req)
}

// Appointments lists bookings with their doctor in booking order. Bookings
// whose doctor is no longer in the catalog are skipped.
func (a *App) Appointments() []model.AppointmentView {
	list := a.store.ListAppointments()
	views := make([]model.AppointmentView, 0, len(list))
	for _, appt := range list {
		d, ok := a.catalog.Get(appt.DoctorID)
		if !ok {
			continue
		}
		views = append(views, model.AppointmentView{Appointment: appt, Doctor: d})
	}
	return views
}

// Appointment returns one booking with its doctor.
func (a *App) Appointment(id string) (model.AppointmentView, error) {
	appt, err := a.store.GetAppointment(id)
	if err != nil {
		return model.AppointmentView{}, err
	}
	d, ok := a.catalog.Get(appt.DoctorID)
	if !ok {
		return model.AppointmentView{}, fmt.Errorf("%w: %q", ErrUnknownDoctor, appt.DoctorID)
	}
	return model.AppointmentView{Appointment: *appt, Doctor: d}, nil
}

// DoctorAppointments lists the bookings for doctorID in booking order.
func (a *App) DoctorAppointments(doctorID string) ([]model.AppointmentView, error) {
	d, err := a.Doctor(doctorID)
	if err != nil {
		return nil, err
	}
	list := a.store.ListByDoctor(doctorID)
	views := make([]model.AppointmentView, 0, len(list))
	for _, appt := range list {
		views = append(views, model.AppointmentView{Appointment: appt, Doctor: d})
	}
	return views, nil
}

// NewSession opens a booking session for doctorID and registers it.
func (a *App) NewSession(doctorID string) (*workflow.Session, error) {
	d, err := a.Doctor(doctorID)
	if err != nil {
		return nil, err
	}
	opts := append([]workflow.Option{
		workflow.WithClock(a.clock),
		workflow.WithLogger(a.log),
	}, a.sessOpts...)
	s := workflow.New(d, a, opts...)
	if err := s.Open(); err != nil {
		return nil, err
	}
	a.sessions.Add(s)
	return s, nil
}

// Session returns a registered session.
func (a *App) Session(id string) (*workflow.Session, bool) {
	return a.sessions.Get(id)
}

// IsInvalidRequest reports whether err carries field errors and returns them.
func IsInvalidRequest(err error) (validation.Errors, bool) {
	var ire *InvalidRequestError
	if errors.As(err, &ire) {
		return ire.Errors, true
	}
	return nil, false
}
