package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"eventease/internal/auth"
	"eventease/internal/service"
)

// CommentHandler handles event comments and user reports.
type CommentHandler struct {
	sessions
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService, resolver auth.SessionResolver) *CommentHandler {
	return &CommentHandler{
		sessions:       sessions{resolver: resolver},
		commentService: commentService,
	}
}

// CommentRequest represents a new comment.
type CommentRequest struct {
	Content string `json:"content" validate:"max=2000"`
}

// ReportRequest flags one event or one comment.
type ReportRequest struct {
	Reason    string     `json:"reason" validate:"max=1000"`
	EventID   *uuid.UUID `json:"eventId" swaggertype:"string"`
	CommentID *uuid.UUID `json:"commentId" swaggertype:"string"`
}

// List godoc
// @Summary Visible comments of an event
// @Tags comments
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {array} model.Comment
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	eventID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.commentService.ListVisible(c.Request().Context(), eventID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// Create godoc
// @Summary Comment on an event
// @Tags comments
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "Event ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	eventID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.Create(c.Request().Context(), h.caller(c), eventID, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// Report godoc
// @Summary Report an event or a comment
// @Tags reports
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body ReportRequest true "Report"
// @Success 201 {object} model.Report
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports [post]
func (h *CommentHandler) Report(c echo.Context) error {
	var req ReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	report, err := h.commentService.Report(c.Request().Context(), h.caller(c), req.Reason, req.EventID, req.CommentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, report)
}
