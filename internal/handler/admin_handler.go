package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventease/internal/auth"
	"eventease/internal/model"
	"eventease/internal/service"
)

// AdminHandler handles user management and the dashboard.
type AdminHandler struct {
	sessions
	adminService service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(adminService service.AdminService, resolver auth.SessionResolver) *AdminHandler {
	return &AdminHandler{
		sessions:     sessions{resolver: resolver},
		adminService: adminService,
	}
}

// RoleRequest changes a user's role.
type RoleRequest struct {
	Role model.Role `json:"role" enums:"ADMIN,STAFF,EVENT_OWNER"`
}

// StatsResponse wraps the dashboard summary.
type StatsResponse struct {
	Stats *service.Stats `json:"stats"`
}

// Stats godoc
// @Summary Dashboard totals
// @Tags admin
// @Produce json
// @Security SessionCookie
// @Success 200 {object} StatsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminService.Stats(c.Request().Context(), h.caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, StatsResponse{Stats: stats})
}

// ListUsers godoc
// @Summary List users, newest first
// @Tags admin
// @Produce json
// @Security SessionCookie
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.adminService.ListUsers(c.Request().Context(), h.caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param id path string true "User ID"
// @Param request body RoleRequest true "Role"
// @Success 200 {object} map[string]model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	var req RoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.adminService.UpdateRole(c.Request().Context(), h.caller(c), c.Param("id"), req.Role)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// DeleteUser godoc
// @Summary Delete a user with their events, RSVPs, comments and reports
// @Tags admin
// @Produce json
// @Security SessionCookie
// @Param id path string true "User ID"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.adminService.DeleteUser(c.Request().Context(), h.caller(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
