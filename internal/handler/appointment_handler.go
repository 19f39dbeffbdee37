package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"doctor-booking-api/internal/model"
)

// BookAppointment validates and books in one call, without the delays of an
// interactive booking session.
func (h *Handler) BookAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in model.BookingRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	appt, err := h.app.Book(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"appointment": appt})
}

// ListAppointments lists every booking, or only those of "doctorId" when given.
func (h *Handler) ListAppointments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, ok := str(req, "doctorId")
	if !ok {
		return encode(map[string]any{"appointments": h.app.Appointments()})
	}
	list, err := h.app.DoctorAppointments(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"appointments": list})
}

func (h *Handler) GetAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, _ := str(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	v, err := h.app.Appointment(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(v)
}
