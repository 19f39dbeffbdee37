package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-booking-api/internal/clock"
	"doctor-booking-api/internal/model"
)

func req(n int) model.BookingRequest {
	return model.BookingRequest{
		DoctorID:     "1",
		PatientName:  fmt.Sprintf("Patient %d", n),
		PatientEmail: fmt.Sprintf("p%d@example.com", n),
		Date:         "2024-01-15",
		Time:         "09:00",
	}
}

func TestBookAppointment(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.FixedZone("X", 3600))
	s := New(WithClock(clock.Fixed(now)))

	a, err := s.BookAppointment(context.Background(), req(1))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.Equal(t, "1", a.DoctorID)
	assert.Equal(t, "Patient 1", a.PatientName)
	assert.True(t, a.CreatedAt.Equal(now))
	assert.Equal(t, time.UTC, a.CreatedAt.Location())

	parsed, err := time.Parse(time.RFC3339Nano, a.CreatedAt.Format(time.RFC3339Nano))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestBookAppointment_AppendOnly(t *testing.T) {
	s := New()
	ctx := context.Background()

	prev := []model.Appointment{}
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		a, err := s.BookAppointment(ctx, req(i))
		require.NoError(t, err)
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true

		list := s.ListAppointments()
		require.Len(t, list, len(prev)+1)
		assert.Equal(t, prev, list[:len(prev)])
		assert.Equal(t, *a, list[len(list)-1])
		prev = list
	}
}

func TestBookAppointment_IDsAreOrdered(t *testing.T) {
	s := New()
	var last string
	for i := 0; i < 50; i++ {
		a, err := s.BookAppointment(context.Background(), req(i))
		require.NoError(t, err)
		assert.Greater(t, a.ID, last)
		last = a.ID
	}
}

func TestBookAppointment_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.BookAppointment(ctx, req(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Len())
}

func TestListAppointments_ReturnsCopy(t *testing.T) {
	s := New()
	s.BookAppointment(context.Background(), req(1))

	list := s.ListAppointments()
	list[0].PatientName = "changed"

	assert.Equal(t, "Patient 1", s.ListAppointments()[0].PatientName)
}

func TestGetAppointmentAndListByDoctor(t *testing.T) {
	n := 0
	s := New(WithIDFunc(func() string { n++; return fmt.Sprintf("id-%d", n) }))
	ctx := context.Background()

	s.BookAppointment(ctx, req(1))
	other := req(2)
	other.DoctorID = "2"
	s.BookAppointment(ctx, other)
	s.BookAppointment(ctx, req(3))

	a, err := s.GetAppointment("id-2")
	require.NoError(t, err)
	assert.Equal(t, "2", a.DoctorID)

	_, err = s.GetAppointment("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	byDoc := s.ListByDoctor("1")
	require.Len(t, byDoc, 2)
	assert.Equal(t, "id-1", byDoc[0].ID)
	assert.Equal(t, "id-3", byDoc[1].ID)
	assert.Empty(t, s.ListByDoctor("9"))
}

func TestSubscribe(t *testing.T) {
	s := New()
	var got []string
	unsub := s.Subscribe(func(a model.Appointment) { got = append(got, a.PatientName) })

	s.BookAppointment(context.Background(), req(1))
	s.BookAppointment(context.Background(), req(2))
	unsub()
	s.BookAppointment(context.Background(), req(3))

	assert.Equal(t, []string{"Patient 1", "Patient 2"}, got)
}

func TestBookAppointment_ConcurrentWriters(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.BookAppointment(context.Background(), req(i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
}
