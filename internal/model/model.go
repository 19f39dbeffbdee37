package model

import "time"

type Doctor struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Specialization string              `json:"specialization"`
	ProfileImage   string              `json:"profileImage"`
	Rating         float64             `json:"rating"`
	Experience     int                 `json:"experience"`
	Location       string              `json:"location"`
	About          string              `json:"about"`
	Availability   map[string][]string `json:"availability"`
	IsAvailable    bool                `json:"isAvailable"`
}

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusPending   AppointmentStatus = "pending"
	StatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID           string            `json:"id"`
	DoctorID     string            `json:"doctorId"`
	PatientName  string            `json:"patientName"`
	PatientEmail string            `json:"patientEmail"`
	Date         string            `json:"date"`
	Time         string            `json:"time"`
	Status       AppointmentStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// BookingRequest carries the caller-supplied part of an Appointment.
type BookingRequest struct {
	DoctorID     string `json:"doctorId"`
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

type AppointmentView struct {
	Appointment
	Doctor Doctor `json:"doctor"`
}
