package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-booking-api/internal/catalog"
	"doctor-booking-api/internal/clock"
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/store"
	"doctor-booking-api/internal/validation"
	"doctor-booking-api/internal/workflow"
)

// Wednesday; seeded doctors see Monday 2024-01-15 as a future weekday.
var now = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Appointment
	err  error
}

func (n *recordingNotifier) AppointmentConfirmed(_ context.Context, a model.Appointment, _ model.Doctor) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, a)
	return n.err
}

func newApp(t *testing.T, opts ...Option) (*App, *store.Store) {
	t.Helper()
	c, err := catalog.New(catalog.Default())
	require.NoError(t, err)
	st := store.New(store.WithClock(clock.Fixed(now)))
	opts = append([]Option{WithClock(clock.Fixed(now))}, opts...)
	a := New(c, st, opts...)
	t.Cleanup(a.Sessions().CloseAll)
	return a, st
}

func mondaySlot(t *testing.T, a *App, id string) string {
	t.Helper()
	slots, err := a.Slots(id, "2024-01-15")
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	return slots[0]
}

func TestSearch(t *testing.T) {
	a, _ := newApp(t)

	all := a.Search("")
	assert.Equal(t, 6, all.Total())
	assert.Len(t, all.Unavailable, 2)
	for _, d := range all.Available {
		assert.True(t, d.IsAvailable)
	}

	none := a.Search("zzz-no-match")
	assert.Equal(t, 0, none.Total())
	assert.NotNil(t, none.Available)
	assert.NotNil(t, none.Unavailable)
}

func TestListingUsesStoredTerm(t *testing.T) {
	a, _ := newApp(t)
	d := catalog.Default()[0]

	a.SetSearchTerm(d.Specialization)
	assert.Equal(t, d.Specialization, a.SearchTerm())

	res := a.Listing()
	assert.Equal(t, d.Specialization, res.SearchTerm)
	require.NotZero(t, res.Total)
	assert.Equal(t, res.Total, len(res.Available)+len(res.Unavailable))
	for _, got := range append(res.Available, res.Unavailable...) {
		assert.Equal(t, d.Specialization, got.Specialization)
	}

	// Search leaves the stored term alone.
	a.Search("")
	assert.Equal(t, d.Specialization, a.SearchTerm())
}

func TestDoctorAndSlots(t *testing.T) {
	a, _ := newApp(t)

	_, err := a.Doctor("nope")
	assert.ErrorIs(t, err, ErrUnknownDoctor)

	_, err = a.Slots("nope", "2024-01-15")
	assert.ErrorIs(t, err, ErrUnknownDoctor)

	slots, err := a.Slots("1", "not-a-date")
	require.NoError(t, err)
	assert.Equal(t, []string{}, slots)
}

func TestBookAppointment(t *testing.T) {
	n := &recordingNotifier{}
	a, st := newApp(t, WithNotifier(n))
	ctx := context.Background()

	t.Run("unknown doctor", func(t *testing.T) {
		_, err := a.BookAppointment(ctx, model.BookingRequest{DoctorID: "nope"})
		assert.ErrorIs(t, err, ErrUnknownDoctor)
	})

	t.Run("unavailable doctor", func(t *testing.T) {
		_, err := a.BookAppointment(ctx, model.BookingRequest{DoctorID: "3"})
		assert.ErrorIs(t, err, ErrDoctorUnavailable)
	})

	t.Run("ok", func(t *testing.T) {
		appt, err := a.BookAppointment(ctx, model.BookingRequest{
			DoctorID: "1", PatientName: "Jane", PatientEmail: "j@x.io", Date: "2024-01-15", Time: mondaySlot(t, a, "1"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, appt.Status)
	})

	assert.Equal(t, 1, st.Len())
	assert.Len(t, n.sent, 1)
}

func TestBookAppointment_NotifierFailureDoesNotFailBooking(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	a, st := newApp(t, WithNotifier(n))

	_, err := a.BookAppointment(context.Background(), model.BookingRequest{DoctorID: "1", Date: "2024-01-15", Time: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())
}

func TestBook_Validates(t *testing.T) {
	a, st := newApp(t)
	ctx := context.Background()

	_, err := a.Book(ctx, model.BookingRequest{DoctorID: "1"})
	errs, ok := IsInvalidRequest(err)
	require.True(t, ok)
	assert.Len(t, errs, 4)

	_, err = a.Book(ctx, model.BookingRequest{
		DoctorID: "1", PatientName: "Jane", PatientEmail: "j@x.io", Date: "2024-01-15", Time: "03:00",
	})
	errs, ok = IsInvalidRequest(err)
	require.True(t, ok)
	assert.Equal(t, "Selected time is not available on this date", errs[validation.FieldTime])
	assert.Contains(t, err.Error(), "time: Selected time")

	appt, err := a.Book(ctx, model.BookingRequest{
		DoctorID: "1", PatientName: "Jane", PatientEmail: "j@x.io", Date: "2024-01-15", Time: mondaySlot(t, a, "1"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, 1, st.Len())
}

func TestBook_RejectsUnicodeSpaceInEmail(t *testing.T) {
	a, st := newApp(t)

	_, err := a.Book(context.Background(), model.BookingRequest{
		DoctorID: "1", PatientName: "Jane", PatientEmail: "jane\u00a0doe@x.com", Date: "2024-01-15", Time: mondaySlot(t, a, "1"),
	})
	errs, ok := IsInvalidRequest(err)
	require.True(t, ok)
	assert.Equal(t, "Please enter a valid email address", errs[validation.FieldPatientEmail])
	assert.Equal(t, 0, st.Len())
}

func TestAppointmentLookups(t *testing.T) {
	a, st := newApp(t)
	ctx := context.Background()

	first, err := a.BookAppointment(ctx, model.BookingRequest{DoctorID: "2", Date: "2024-01-15", Time: "09:00"})
	require.NoError(t, err)
	_, err = a.BookAppointment(ctx, model.BookingRequest{DoctorID: "1", Date: "2024-01-15", Time: "09:00"})
	require.NoError(t, err)
	second, err := a.BookAppointment(ctx, model.BookingRequest{DoctorID: "2", Date: "2024-01-15", Time: "10:00"})
	require.NoError(t, err)

	v, err := a.Appointment(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, v.ID)
	assert.Equal(t, "2", v.Doctor.ID)

	_, err = a.Appointment("missing")
	assert.ErrorIs(t, err, ErrNoAppointment)

	list, err := a.DoctorAppointments("2")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	list, err = a.DoctorAppointments("6")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	_, err = a.DoctorAppointments("nope")
	assert.ErrorIs(t, err, ErrUnknownDoctor)

	orphan, err := st.BookAppointment(ctx, model.BookingRequest{DoctorID: "ghost"})
	require.NoError(t, err)
	_, err = a.Appointment(orphan.ID)
	assert.ErrorIs(t, err, ErrUnknownDoctor)
}

func TestAppointmentsJoinDoctor(t *testing.T) {
	a, st := newApp(t)
	ctx := context.Background()

	_, err := a.BookAppointment(ctx, model.BookingRequest{DoctorID: "2", Date: "2024-01-15", Time: "09:00"})
	require.NoError(t, err)
	// booked directly on the store for a doctor the catalog does not know
	_, err = st.BookAppointment(ctx, model.BookingRequest{DoctorID: "ghost"})
	require.NoError(t, err)

	views := a.Appointments()
	require.Len(t, views, 1)
	assert.Equal(t, "2", views[0].Doctor.ID)
	assert.Equal(t, views[0].DoctorID, views[0].Doctor.ID)
}

func TestNewSession(t *testing.T) {
	a, st := newApp(t, WithSessionOptions(workflow.WithDelays(0, 0)))

	_, err := a.NewSession("nope")
	assert.ErrorIs(t, err, ErrUnknownDoctor)

	s, err := a.NewSession("1")
	require.NoError(t, err)
	assert.Equal(t, workflow.Editing, s.State())
	got, ok := a.Session(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	require.NoError(t, s.SetFields(map[string]string{
		"patientName":  "Jane Doe",
		"patientEmail": "jane@x.io",
		"date":         "2024-01-15",
		"time":         mondaySlot(t, a, "1"),
	}))
	require.NoError(t, s.Submit())

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
	assert.Equal(t, 1, st.Len())
}

func TestNewSession_UnavailableDoctor(t *testing.T) {
	a, st := newApp(t)
	s, err := a.NewSession("3")
	require.NoError(t, err)
	assert.False(t, s.CanSubmit())
	assert.ErrorIs(t, s.Submit(), ErrDoctorUnavailable)
	assert.Equal(t, 0, st.Len())
}

func TestListAndSlotList(t *testing.T) {
	a, _ := newApp(t)

	l := a.List("cardio")
	assert.Equal(t, "cardio", l.SearchTerm)
	assert.Equal(t, 1, l.Total)
	require.Len(t, l.Available, 1)
	assert.Equal(t, "1", l.Available[0].ID)

	sl, err := a.SlotList("1", "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "Monday", sl.Weekday)
	require.NotEmpty(t, sl.Slots)
	assert.Equal(t, Slot{Time: "09:00", Label: "9:00 AM"}, sl.Slots[0])

	sl, err = a.SlotList("1", "garbage")
	require.NoError(t, err)
	assert.Empty(t, sl.Weekday)
	assert.Equal(t, []Slot{}, sl.Slots)
}
