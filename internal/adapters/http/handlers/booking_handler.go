package handlers

import (
	"swadhrama-api/internal/core/services"
	"swadhrama-api/internal/pkg/pagination"
	"swadhrama-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookingHandler handles booking request endpoints
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles a new booking request
// @Summary Create booking request
// @Description Members request a service; admins may book on behalf of a member
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookingInput true "Booking request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateBookingInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	booking, err := h.bookingService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return handleError(c, err, "Failed to create booking request")
	}

	return response.Created(c, "Booking request created successfully", booking)
}

// List returns booking requests for the caller's role
// @Summary List booking requests
// @Description Members see their own requests, providers see assigned and unassigned requests, admins see all
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, accepted or rejected"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	items, total, err := h.bookingService.List(c.UserContext(), actor, c.Query("status"), params)
	if err != nil {
		return handleError(c, err, "Failed to list booking requests")
	}

	return response.Success(c, "Booking requests retrieved successfully", pagination.NewResponse(items, params, total))
}

// ListScheduled returns scheduled services for the caller's role
// @Summary List scheduled services
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /bookings/scheduled [get]
func (h *BookingHandler) ListScheduled(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	items, total, err := h.bookingService.ListScheduled(c.UserContext(), actor, params)
	if err != nil {
		return handleError(c, err, "Failed to list scheduled services")
	}

	return response.Success(c, "Scheduled services retrieved successfully", pagination.NewResponse(items, params, total))
}

// Get returns one booking request
// @Summary Get booking request
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	booking, err := h.bookingService.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to get booking request")
	}

	return response.Success(c, "Booking request retrieved successfully", booking)
}

// Accept accepts a pending request and schedules the service
// @Summary Accept booking request
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings/{id}/accept [post]
func (h *BookingHandler) Accept(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	scheduled, err := h.bookingService.Accept(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to accept booking request")
	}

	return response.Success(c, "Booking request accepted", scheduled)
}

// Reject rejects a pending request
// @Summary Reject booking request
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking request ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings/{id}/reject [post]
func (h *BookingHandler) Reject(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	booking, err := h.bookingService.Reject(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return handleError(c, err, "Failed to reject booking request")
	}

	return response.Success(c, "Booking request rejected", booking)
}

// Reschedule is reserved and always answers 501
// @Summary Reschedule booking request
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking request ID"
// @Failure 501 {object} response.Response
// @Router /bookings/{id}/reschedule [post]
func (h *BookingHandler) Reschedule(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	err := h.bookingService.Reschedule(c.UserContext(), actor, c.Params("id"))
	return handleError(c, err, "Failed to reschedule booking request")
}
