// Package api exposes the booking flow over HTTP with echo.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"doctor-booking-api/internal/app"
	"doctor-booking-api/internal/middleware"
	"doctor-booking-api/internal/realtime"
	"doctor-booking-api/internal/workflow"
)

type Handler struct {
	app     *app.App
	hub     *realtime.Hub
	limiter *middleware.RateLimiter
}

// NewHandler wires a to HTTP. hub and limiter may be nil.
func NewHandler(a *app.App, hub *realtime.Hub, limiter *middleware.RateLimiter) *Handler {
	return &Handler{app: a, hub: hub, limiter: limiter}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	if h.hub != nil {
		e.GET("/ws", h.hub.Handler)
	}

	api := e.Group("/api/v1")
	api.GET("/doctors", h.ListDoctors)
	api.PUT("/search", h.SetSearch)
	api.GET("/doctors/:id", h.GetDoctor)
	api.GET("/doctors/:id/slots", h.ListSlots)
	api.GET("/doctors/:id/appointments", h.ListDoctorAppointments)
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/:id", h.GetAppointment)

	var limited []echo.MiddlewareFunc
	if h.limiter != nil {
		limited = append(limited, middleware.RateLimitHTTP(h.limiter))
	}
	api.POST("/doctors/:id/sessions", h.CreateSession, limited...)
	api.GET("/sessions/:id", h.GetSession)
	api.PATCH("/sessions/:id", h.UpdateSession)
	api.POST("/sessions/:id/submit", h.SubmitSession, limited...)
	api.POST("/sessions/:id/cancel", h.CancelSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListDoctors filters by ?search= when present, otherwise by the stored term.
func (h *Handler) ListDoctors(c echo.Context) error {
	if v, ok := c.QueryParams()["search"]; ok && len(v) > 0 {
		return c.JSON(http.StatusOK, h.app.List(v[0]))
	}
	return c.JSON(http.StatusOK, h.app.Listing())
}

func (h *Handler) SetSearch(c echo.Context) error {
	var body struct {
		Term string `json:"term"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	h.app.SetSearchTerm(body.Term)
	return c.JSON(http.StatusOK, h.app.List(body.Term))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.app.Doctor(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	sl, err := h.app.SlotList(c.Param("id"), date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sl)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.app.Appointments())
}

func (h *Handler) GetAppointment(c echo.Context) error {
	v, err := h.app.Appointment(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListDoctorAppointments(c echo.Context) error {
	list, err := h.app.DoctorAppointments(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, app.ErrNoAppointment):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, app.ErrUnknownDoctor):
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	case errors.Is(err, app.ErrDoctorUnavailable):
		return echo.NewHTTPError(http.StatusConflict, "doctor is not accepting bookings")
	case errors.Is(err, workflow.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrUnknownField):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
