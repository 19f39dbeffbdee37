package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"doctor-booking-api/internal/app"
	"doctor-booking-api/internal/model"
)

// Client calls booking.v1.BookingService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, name string, req any, out any) error {
	in, err := encode(req)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+name, in, resp); err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) ListDoctors(ctx context.Context, search string) (app.DoctorList, error) {
	var out app.DoctorList
	err := c.invoke(ctx, "ListDoctors", map[string]string{"search": search}, &out)
	return out, err
}

func (c *Client) GetDoctor(ctx context.Context, id string) (model.Doctor, error) {
	var out model.Doctor
	err := c.invoke(ctx, "GetDoctor", map[string]string{"id": id}, &out)
	return out, err
}

func (c *Client) ListSlots(ctx context.Context, doctorID, date string) (app.SlotList, error) {
	var out app.SlotList
	err := c.invoke(ctx, "ListSlots", map[string]string{"doctorId": doctorID, "date": date}, &out)
	return out, err
}

func (c *Client) BookAppointment(ctx context.Context, req model.BookingRequest) (*model.Appointment, error) {
	var out struct {
		Appointment *model.Appointment `json:"appointment"`
	}
	if err := c.invoke(ctx, "BookAppointment", req, &out); err != nil {
		return nil, err
	}
	return out.Appointment, nil
}

func (c *Client) ListAppointments(ctx context.Context) ([]model.AppointmentView, error) {
	var out struct {
		Appointments []model.AppointmentView `json:"appointments"`
	}
	err := c.invoke(ctx, "ListAppointments", struct{}{}, &out)
	return out.Appointments, err
}

func (c *Client) ListDoctorAppointments(ctx context.Context, doctorID string) ([]model.AppointmentView, error) {
	var out struct {
		Appointments []model.AppointmentView `json:"appointments"`
	}
	err := c.invoke(ctx, "ListAppointments", map[string]string{"doctorId": doctorID}, &out)
	return out.Appointments, err
}

func (c *Client) GetAppointment(ctx context.Context, id string) (model.AppointmentView, error) {
	var out model.AppointmentView
	err := c.invoke(ctx, "GetAppointment", map[string]string{"id": id}, &out)
	return out, err
}
