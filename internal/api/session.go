package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"doctor-booking-api/internal/workflow"
)

func (h *Handler) session(c echo.Context) (*workflow.Session, error) {
	s, ok := h.app.Session(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return s, nil
}

// CreateSession opens a booking form for the doctor in the path.
func (h *Handler) CreateSession(c echo.Context) error {
	s, err := h.app.NewSession(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if h.hub != nil {
		h.hub.WatchSession(s)
	}
	return c.JSON(http.StatusCreated, s.Snapshot())
}

func (h *Handler) GetSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

// UpdateSession applies a {"field": "value"} map to the form.
func (h *Handler) UpdateSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	var fields map[string]string
	// body only; Bind would also copy path params into the map
	if err := (&echo.DefaultBinder{}).BindBody(c, &fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := s.SetFields(fields); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

// SubmitSession starts the booking. The snapshot is returned with 422 when
// the form has errors so the client can show them.
func (h *Handler) SubmitSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := s.Submit(); err != nil {
		if errors.Is(err, workflow.ErrInvalidForm) {
			return c.JSON(http.StatusUnprocessableEntity, s.Snapshot())
		}
		return httpError(err)
	}
	return c.JSON(http.StatusAccepted, s.Snapshot())
}

func (h *Handler) CancelSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	if err := s.Cancel(); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

func (h *Handler) DeleteSession(c echo.Context) error {
	if !h.app.Sessions().Close(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.NoContent(http.StatusNoContent)
}
