// Package handler serves the booking API over gRPC.
//
// Requests and responses are google.protobuf.Struct values shaped like the
// JSON bodies of the HTTP API, so no generated code is needed on either side.
package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"doctor-booking-api/internal/app"
)

const ServiceName = "booking.v1.BookingService"

// BookingServiceServer is the server side of booking.v1.BookingService.
type BookingServiceServer interface {
	ListDoctors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDoctor(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSlots(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BookAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAppointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type Handler struct {
	app *app.App
}

func New(a *app.App) *Handler {
	return &Handler{app: a}
}

func Register(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListDoctors", BookingServiceServer.ListDoctors),
		unary("GetDoctor", BookingServiceServer.GetDoctor),
		unary("ListSlots", BookingServiceServer.ListSlots),
		unary("BookAppointment", BookingServiceServer.BookAppointment),
		unary("ListAppointments", BookingServiceServer.ListAppointments),
		unary("GetAppointment", BookingServiceServer.GetAppointment),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "booking/v1/booking.proto",
}

type method func(BookingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call method) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, icpt grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(BookingServiceServer)
			if icpt == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return icpt(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// encode renders v through its JSON form.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out := new(structpb.Struct)
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// decode fills v from s using v's JSON field names.
func decode(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	b, err := s.MarshalJSON()
	if err != nil {
		return status.Error(codes.InvalidArgument, "bad request")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("bad request: %v", err))
	}
	return nil
}

func str(s *structpb.Struct, key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return "", false
	}
	return v.GetStringValue(), true
}
