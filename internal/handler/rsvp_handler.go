package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventease/internal/auth"
	"eventease/internal/model"
	"eventease/internal/service"
)

// RSVPHandler handles attendee registrations.
type RSVPHandler struct {
	sessions
	rsvpService service.RSVPService
}

// NewRSVPHandler creates a new RSVP handler.
func NewRSVPHandler(rsvpService service.RSVPService, resolver auth.SessionResolver) *RSVPHandler {
	return &RSVPHandler{
		sessions:    sessions{resolver: resolver},
		rsvpService: rsvpService,
	}
}

// RSVPRequest represents a public RSVP.
type RSVPRequest struct {
	Name  string `json:"name" validate:"max=255"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
}

// RSVPStatusRequest changes an RSVP's status.
type RSVPStatusRequest struct {
	Status model.RSVPStatus `json:"status" enums:"pending,confirmed,cancelled"`
}

// Create godoc
// @Summary RSVP to an event
// @Description Public. The RSVP is confirmed immediately when a seat is free.
// @Tags rsvps
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body RSVPRequest true "Attendee"
// @Success 200 {object} model.RSVP
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id}/rsvp [post]
func (h *RSVPHandler) Create(c echo.Context) error {
	eventID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req RSVPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rsvp, err := h.rsvpService.Create(c.Request().Context(), eventID, req.Name, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rsvp)
}

// UpdateStatus godoc
// @Summary Change an RSVP's status
// @Tags rsvps
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Event ID"
// @Param rsvpId path string true "RSVP ID"
// @Param request body RSVPStatusRequest true "Status"
// @Success 200 {object} model.RSVP
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id}/rsvp/{rsvpId} [patch]
func (h *RSVPHandler) UpdateStatus(c echo.Context) error {
	eventID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	rsvpID, err := uuidParam(c, "rsvpId")
	if err != nil {
		return err
	}
	var req RSVPStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rsvp, err := h.rsvpService.UpdateStatus(c.Request().Context(), h.caller(c), eventID, rsvpID, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rsvp)
}
