package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"eventease/internal/auth"
	"eventease/internal/errors"
	"eventease/internal/model"
	"eventease/internal/service"
)

// EventHandler handles event endpoints.
type EventHandler struct {
	sessions
	eventService service.EventService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(eventService service.EventService, resolver auth.SessionResolver) *EventHandler {
	return &EventHandler{
		sessions:     sessions{resolver: resolver},
		eventService: eventService,
	}
}

// EventRequest represents the editable fields of an event.
type EventRequest struct {
	Title       string           `json:"title" validate:"max=255"`
	Description string           `json:"description"`
	Date        string           `json:"date" example:"2025-06-01T18:30:00Z"`
	Location    string           `json:"location" validate:"max=255"`
	Capacity    *int             `json:"capacity"`
	IsPaid      bool             `json:"isPaid"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
}

// Layouts accepted for event dates, the last two as sent by HTML date inputs.
var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseEventDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", errors.ErrInvalidEvent, v)
}

func (r EventRequest) input() (service.EventInput, error) {
	date, err := parseEventDate(r.Date)
	if err != nil {
		return service.EventInput{}, err
	}
	return service.EventInput{
		Title:       r.Title,
		Description: r.Description,
		Date:        date,
		Location:    r.Location,
		Capacity:    r.Capacity,
		IsPaid:      r.IsPaid,
		Price:       r.Price,
	}, nil
}

// List godoc
// @Summary List events
// @Tags events
// @Produce json
// @Param status query string false "Moderation status filter"
// @Success 200 {array} model.Event
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.eventService.List(c.Request().Context(), model.EventStatus(c.QueryParam("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get godoc
// @Summary Get an event with its RSVPs
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} model.Event
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	event, err := h.eventService.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body EventRequest true "Event"
// @Success 201 {object} model.Event
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	caller := h.caller(c)
	var req EventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}

	event, err := h.eventService.Create(c.Request().Context(), caller, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, event)
}

// Update godoc
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Event ID"
// @Param request body EventRequest true "Event"
// @Success 200 {object} model.Event
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req EventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}

	event, err := h.eventService.Update(c.Request().Context(), h.caller(c), id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event and everything attached to it
// @Tags events
// @Security SessionCookie
// @Param id path string true "Event ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.eventService.Delete(c.Request().Context(), h.caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
