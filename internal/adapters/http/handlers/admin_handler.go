package handlers

import (
	"swadhrama-api/internal/core/services"
	"swadhrama-api/internal/pkg/pagination"
	"swadhrama-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles user moderation endpoints (Admin only)
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// UpdateStatusRequest represents a status change body
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateRoleRequest represents a role change body
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ListUsers handles listing users
// @Summary List users
// @Description Paginated users, newest first, filtered by role, status and search (Admin only)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "MEMBER, PROVIDER or ADMIN"
// @Param status query string false "ACTIVE, PENDING or SUSPENDED"
// @Param search query string false "Matches email, phone or full name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	input := &services.ListUsersInput{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	users, total, err := h.adminService.ListUsers(c.UserContext(), actor, input, params)
	if err != nil {
		return handleError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", fiber.Map{
		"users": users,
		"total": total,
		"meta":  pagination.GetMeta(params, total),
	})
}

// UpdateStatus handles a user status change
// @Summary Update user status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.adminService.UpdateStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return handleError(c, err, "Failed to update user status")
	}

	return response.Success(c, "User status updated successfully", user)
}

// UpdateRole handles a user role change
// @Summary Update user role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateRoleRequest true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.adminService.UpdateRole(c.UserContext(), actor, id, req.Role)
	if err != nil {
		return handleError(c, err, "Failed to update user role")
	}

	return response.Success(c, "User role updated successfully", user)
}

// DeleteUser handles a hard delete
// @Summary Delete user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.adminService.DeleteUser(c.UserContext(), actor, id); err != nil {
		return handleError(c, err, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// Stats returns platform counters
// @Summary Platform statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	stats, err := h.adminService.Stats(c.UserContext(), actor)
	if err != nil {
		return handleError(c, err, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}
