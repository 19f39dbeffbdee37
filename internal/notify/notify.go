// Package notify tells patients about confirmed appointments.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/validation"
)

// Notifier is implemented by confirmation channels (email, SMS, ...).
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, a model.Appointment, d model.Doctor) error
}

// Log writes the confirmation that would be emailed to the patient.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "notify").Logger()}
}

func (l *Log) AppointmentConfirmed(_ context.Context, a model.Appointment, d model.Doctor) error {
	l.logger.Info().
		Str("appointment_id", a.ID).
		Str("to", a.PatientEmail).
		Str("doctor", d.Name).
		Str("when", validation.FormatDate(a.Date)+" at "+validation.FormatTime(a.Time)).
		Msg("confirmation sent")
	return nil
}

// Nop discards notifications.
type Nop struct{}

func (Nop) AppointmentConfirmed(context.Context, model.Appointment, model.Doctor) error { return nil }
