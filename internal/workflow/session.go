// Package workflow drives a single booking from form entry to a confirmed
// appointment.
//
// A Session moves Idle -> Editing -> Submitting -> Confirmed -> Done. Failed
// validation keeps it in Editing with per-field errors; a failed booking call
// returns it to Editing with a submit error. Submitting and the confirmation
// hold are asynchronous: they run on a goroutine bound to a context that
// Cancel and Close revoke, and every transition they trigger is checked
// against a generation counter so a stale continuation never changes state.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"doctor-booking-api/internal/catalog"
	"doctor-booking-api/internal/clock"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/validation"
)

const (
	DefaultSubmitDelay  = 1500 * time.Millisecond
	DefaultConfirmDelay = 3000 * time.Millisecond
)

var (
	ErrInvalidForm  = errors.New("booking form has errors")
	ErrInvalidState = errors.New("action not allowed in current state")
	ErrUnknownField = errors.New("unknown form field")
)

// Booker performs the actual booking once the form is valid.
type Booker interface {
	BookAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error)
}

type Form struct {
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// Snapshot is the session as of one transition. Seq increases with every
// transition; subscribers never see a lower Seq after a higher one.
type Snapshot struct {
	ID             string             `json:"id"`
	Seq            uint64             `json:"seq"`
	DoctorID       string             `json:"doctorId"`
	State          State              `json:"state"`
	Form           Form               `json:"form"`
	Errors         validation.Errors  `json:"errors"`
	AvailableTimes []string           `json:"availableTimes"`
	TimeStale      bool               `json:"timeStale"`
	CanSubmit      bool               `json:"canSubmit"`
	SubmitError    string             `json:"submitError,omitempty"`
	Appointment    *model.Appointment `json:"appointment,omitempty"`
	Message        string             `json:"message,omitempty"`
}

type Session struct {
	id           string
	doctor       model.Doctor
	booker       Booker
	clock        clock.Clock
	submitDelay  time.Duration
	confirmDelay time.Duration
	log          zerolog.Logger

	mu         sync.Mutex
	state      State
	form       Form
	errs       validation.Errors
	slots      []string
	submitErr  string
	appt       *model.Appointment
	gen        int
	cancel     context.CancelFunc
	done       chan struct{}
	touched    time.Time
	finishedAt time.Time
	seq        uint64

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Snapshot)

	pubMu     sync.Mutex
	published uint64
}

type Option func(*Session)

func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithDelays(submit, confirm time.Duration) Option {
	return func(s *Session) {
		s.submitDelay = submit
		s.confirmDelay = confirm
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates an Idle session for doctor. booker is called once per
// successful submission.
func New(doctor model.Doctor, booker Booker, opts ...Option) *Session {
	s := &Session{
		id:           uuid.New().String(),
		doctor:       doctor,
		booker:       booker,
		clock:        clock.Real(nil),
		submitDelay:  DefaultSubmitDelay,
		confirmDelay: DefaultConfirmDelay,
		log:          zerolog.Nop(),
		state:        Idle,
		errs:         validation.Errors{},
		slots:        []string{},
		done:         make(chan struct{}),
		subs:         make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With().Str("session_id", s.id).Str("doctor_id", doctor.ID).Logger()
	s.touched = s.clock.Now()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Doctor() model.Doctor { return s.doctor }

// Done is closed when the session reaches Done, Cancelled or Closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Open shows the form.
func (s *Session) Open() error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return fmt.Errorf("%w: open from %s", ErrInvalidState, s.state)
	}
	s.state = Editing
	s.touched = s.clock.Now()
	snap := s.transitionLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// SetField updates one form field and clears its error. Changing the date
// recomputes the available times; a selected time that is no longer offered
// is kept and reported through Snapshot.TimeStale.
func (s *Session) SetField(field, value string) error {
	return s.SetFields(map[string]string{field: value})
}

// SetFields applies several field changes as one transition.
func (s *Session) SetFields(fields map[string]string) error {
	for f := range fields {
		if !knownField(f) {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}

	s.mu.Lock()
	if s.state != Editing {
		s.mu.Unlock()
		return fmt.Errorf("%w: edit in %s", ErrInvalidState, s.state)
	}
	for _, f := range fieldOrder {
		v, ok := fields[f]
		if !ok {
			continue
		}
		switch f {
		case validation.FieldPatientName:
			s.form.PatientName = v
		case validation.FieldPatientEmail:
			s.form.PatientEmail = v
		case validation.FieldDate:
			s.form.Date = v
			s.slots = catalog.ResolveSlots(s.doctor, v)
		case validation.FieldTime:
			s.form.Time = v
		}
		delete(s.errs, f)
	}
	s.touched = s.clock.Now()
	snap := s.transitionLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Submit validates the form and, when it is valid, starts the booking.
// Submitting again while a booking is in flight or confirmed does nothing.
func (s *Session) Submit() error {
	s.mu.Lock()
	switch s.state {
	case Submitting, Confirmed, Done:
		s.mu.Unlock()
		return nil
	case Editing:
	default:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: submit in %s", ErrInvalidState, st)
	}
	if !s.doctor.IsAvailable {
		s.mu.Unlock()
		return catalog.ErrDoctorUnavailable
	}

	s.touched = s.clock.Now()
	errs := validation.Validate(s.form.PatientName, s.form.PatientEmail, s.form.Date, s.form.Time, s.touched)
	if s.form.Time != "" && !errs.Has(validation.FieldDate) && !contains(s.slots, s.form.Time) {
		errs[validation.FieldTime] = "Selected time is not available on this date"
	}
	if !errs.Empty() {
		s.errs = errs
		snap := s.transitionLocked()
		s.mu.Unlock()
		s.publish(snap)
		return ErrInvalidForm
	}

	s.errs = validation.Errors{}
	s.submitErr = ""
	s.state = Submitting
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	req := model.BookingRequest{
		DoctorID:     s.doctor.ID,
		PatientName:  s.form.PatientName,
		PatientEmail: s.form.PatientEmail,
		Date:         s.form.Date,
		Time:         s.form.Time,
	}
	snap := s.transitionLocked()
	s.mu.Unlock()

	s.log.Debug().Str("date", req.Date).Str("time", req.Time).Msg("booking submitted")
	s.publish(snap)
	go s.run(ctx, gen, req)
	return nil
}

func (s *Session) run(ctx context.Context, gen int, req model.BookingRequest) {
	if !s.wait(ctx, s.submitDelay) {
		return
	}

	appt, err := s.booker.BookAppointment(ctx, req)

	s.mu.Lock()
	if s.gen != gen || s.state != Submitting {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.state = Editing
		s.submitErr = err.Error()
		s.cancel()
		s.cancel = nil
		snap := s.transitionLocked()
		s.mu.Unlock()

		s.log.Warn().Err(err).Msg("booking failed")
		s.publish(snap)
		return
	}
	s.state = Confirmed
	s.appt = appt
	snap := s.transitionLocked()
	s.mu.Unlock()

	s.log.Info().Str("appointment_id", appt.ID).Msg("booking confirmed")
	s.publish(snap)

	if !s.wait(ctx, s.confirmDelay) {
		return
	}

	s.mu.Lock()
	if s.gen != gen || s.state != Confirmed {
		s.mu.Unlock()
		return
	}
	s.state = Done
	s.finishLocked()
	snap = s.transitionLocked()
	s.mu.Unlock()

	s.publish(snap)
}

// wait reports false if ctx ended first.
func (s *Session) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-s.clock.After(d):
		return ctx.Err() == nil
	case <-ctx.Done():
		return false
	}
}

// Cancel abandons the form. It is only allowed while Editing.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.state != Editing {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cancel in %s", ErrInvalidState, st)
	}
	s.state = Cancelled
	s.gen++
	s.finishLocked()
	snap := s.transitionLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Close tears the session down from any state, suppressing pending timers.
func (s *Session) Close() {
	s.mu.Lock()
	switch s.state {
	case Done, Cancelled, Closed:
		s.mu.Unlock()
		return
	}
	s.state = Closed
	s.gen++
	s.finishLocked()
	snap := s.transitionLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func (s *Session) finishLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.finishedAt = s.clock.Now()
	close(s.done)
}

// CanSubmit reports whether the submit control is enabled.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) canSubmitLocked() bool {
	return s.state == Editing && s.doctor.IsAvailable
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// transitionLocked stamps the next sequence number on a snapshot.
func (s *Session) transitionLocked() Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	errs := make(validation.Errors, len(s.errs))
	for k, v := range s.errs {
		errs[k] = v
	}
	snap := Snapshot{
		ID:             s.id,
		Seq:            s.seq,
		DoctorID:       s.doctor.ID,
		State:          s.state,
		Form:           s.form,
		Errors:         errs,
		AvailableTimes: append([]string{}, s.slots...),
		TimeStale:      s.form.Time != "" && s.form.Date != "" && !contains(s.slots, s.form.Time),
		CanSubmit:      s.canSubmitLocked(),
		SubmitError:    s.submitErr,
	}
	if s.appt != nil {
		a := *s.appt
		snap.Appointment = &a
		snap.Message = fmt.Sprintf("Your appointment with %s has been successfully booked for %s at %s.",
			s.doctor.Name, validation.FormatDate(a.Date), validation.FormatTime(a.Time))
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every transition.
// Deliveries are serialized and in Seq order; fn must not drive the session.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// publish delivers snap unless a later transition has already been
// delivered.
func (s *Session) publish(snap Snapshot) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if snap.Seq <= s.published {
		return
	}
	s.published = snap.Seq

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// idle reports the last activity time and, once finished, when it finished.
func (s *Session) idle() (touched, finished time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched, s.finishedAt
}

var fieldOrder = []string{
	validation.FieldPatientName,
	validation.FieldPatientEmail,
	validation.FieldDate,
	validation.FieldTime,
}

func knownField(f string) bool {
	return contains(fieldOrder, f)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
