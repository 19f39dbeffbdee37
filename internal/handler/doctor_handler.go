package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"doctor-booking-api/internal/app"
)

// ListDoctors filters by "search" when given, otherwise by the stored term.
func (h *Handler) ListDoctors(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if term, ok := str(req, "search"); ok {
		return encode(h.app.List(term))
	}
	return encode(h.app.Listing())
}

func (h *Handler) GetDoctor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, _ := str(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	d, err := h.app.Doctor(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(d)
}

func (h *Handler) ListSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, _ := str(req, "doctorId")
	date, _ := str(req, "date")
	if id == "" || date == "" {
		return nil, status.Error(codes.InvalidArgument, "doctorId and date required")
	}
	sl, err := h.app.SlotList(id, date)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(sl)
}

func toStatus(err error) error {
	if errs, ok := app.IsInvalidRequest(err); ok {
		st := status.New(codes.InvalidArgument, err.Error())
		detail, derr := encode(errs)
		if derr == nil {
			if withDetail, werr := st.WithDetails(detail); werr == nil {
				st = withDetail
			}
		}
		return st.Err()
	}
	switch {
	case errors.Is(err, app.ErrNoAppointment):
		return status.Error(codes.NotFound, "appointment not found")
	case errors.Is(err, app.ErrUnknownDoctor):
		return status.Error(codes.NotFound, "doctor not found")
	case errors.Is(err, app.ErrDoctorUnavailable):
		return status.Error(codes.FailedPrecondition, "doctor is not accepting bookings")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, "internal error")
}
