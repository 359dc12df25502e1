package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventease/internal/auth"
	"eventease/internal/model"
	"eventease/internal/service"
)

// StaffHandler handles moderation endpoints.
type StaffHandler struct {
	sessions
	moderation service.ModerationService
}

// NewStaffHandler creates a new staff handler.
func NewStaffHandler(moderation service.ModerationService, resolver auth.SessionResolver) *StaffHandler {
	return &StaffHandler{
		sessions:   sessions{resolver: resolver},
		moderation: moderation,
	}
}

// ModerateEventRequest approves or rejects a pending event.
type ModerateEventRequest struct {
	Status model.EventStatus `json:"status" enums:"APPROVED,REJECTED"`
}

// ReportStatusRequest closes a report.
type ReportStatusRequest struct {
	Status model.ReportStatus `json:"status" enums:"RESOLVED,DISMISSED"`
}

// ModerateEvent godoc
// @Summary Approve or reject a pending event
// @Tags staff
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param eventId path string true "Event ID"
// @Param request body ModerateEventRequest true "Status"
// @Success 200 {object} map[string]model.Event
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /staff/events/{eventId}/moderate [put]
func (h *StaffHandler) ModerateEvent(c echo.Context) error {
	eventID, err := uuidParam(c, "eventId")
	if err != nil {
		return err
	}
	var req ModerateEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	event, err := h.moderation.ModerateEvent(c.Request().Context(), h.caller(c), eventID, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": event})
}

// HideComment godoc
// @Summary Hide a comment
// @Tags staff
// @Produce json
// @Security SessionCookie
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]model.Comment
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /staff/comments/{commentId}/hide [put]
func (h *StaffHandler) HideComment(c echo.Context) error {
	commentID, err := uuidParam(c, "commentId")
	if err != nil {
		return err
	}
	comment, err := h.moderation.HideComment(c.Request().Context(), h.caller(c), commentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comment": comment})
}

// UpdateReport godoc
// @Summary Resolve or dismiss a report
// @Description RESOLVED hides a reported comment or rejects a reported event.
// @Tags staff
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param reportId path string true "Report ID"
// @Param request body ReportStatusRequest true "Status"
// @Success 200 {object} map[string]model.Report
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /staff/reports/{reportId} [put]
func (h *StaffHandler) UpdateReport(c echo.Context) error {
	reportID, err := uuidParam(c, "reportId")
	if err != nil {
		return err
	}
	var req ReportStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	report, err := h.moderation.UpdateReport(c.Request().Context(), h.caller(c), reportID, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"report": report})
}

// PendingEvents godoc
// @Summary Events waiting for review
// @Tags staff
// @Produce json
// @Security SessionCookie
// @Success 200 {array} service.PendingEvent
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /staff/events/pending [get]
func (h *StaffHandler) PendingEvents(c echo.Context) error {
	events, err := h.moderation.PendingEvents(c.Request().Context(), h.caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// FlaggedComments godoc
// @Summary Visible comments with pending reports
// @Tags staff
// @Produce json
// @Security SessionCookie
// @Success 200 {array} model.Comment
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /staff/comments/flagged [get]
func (h *StaffHandler) FlaggedComments(c echo.Context) error {
	comments, err := h.moderation.FlaggedComments(c.Request().Context(), h.caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// PendingReports godoc
// @Summary Open reports
// @Tags staff
// @Produce json
// @Security SessionCookie
// @Success 200 {array} model.Report
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /staff/reports/pending [get]
func (h *StaffHandler) PendingReports(c echo.Context) error {
	reports, err := h.moderation.PendingReports(c.Request().Context(), h.caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reports)
}
