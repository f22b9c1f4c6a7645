package controller

import (
	"nuon-api/core/controller"
	"nuon-api/core/errors"
	"nuon-api/core/params"
	"nuon-api/core/utils"
	"nuon-api/modules/booking/dto"
	"nuon-api/modules/booking/entity"
	"nuon-api/modules/booking/service"
	"nuon-api/modules/booking/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	service service.BookingServiceInterface
	controller.BaseController
}

func NewBookingController(svc service.BookingServiceInterface) *BookingController {
	return &BookingController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// BookSlot reserves a seat on a slot for the calling user
// @Summary Book a slot
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BookSlotRequest true "Booking"
// @Success 201 {object} dto.BookingResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /mentor/book [post]
func (c *BookingController) BookSlot(ctx echo.Context) error {
	userID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.BookSlotRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	validationResult := validator.ValidateBookSlotRequest(req)
	if validationResult.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	booking, appErr := c.service.BookSlot(ctx.Request().Context(), userID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, booking, "Slot booked successfully")
}

// ListMyBookings lists the calling user's bookings, newest first
// @Summary List own bookings
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, confirmed, cancelled or completed"
// @Success 200 {array} dto.BookingDetailResponse
// @Router /mentor/my-bookings [get]
func (c *BookingController) ListMyBookings(ctx echo.Context) error {
	userID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	status := ctx.QueryParam("status")
	if result := validator.ValidateStatusFilter(status); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid status filter", result)
	}

	bookings, appErr := c.service.ListMyBookings(ctx.Request().Context(), userID, status)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, bookings, "Bookings retrieved successfully")
}

// @Router /mentor/my-bookings/{id}/cancel [put]
func (c *BookingController) CancelMyBooking(ctx echo.Context) error {
	userID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	bookingID := utils.ToUUID(ctx.Param("id"))
	if bookingID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking id")
	}

	booking, appErr := c.service.CancelMyBooking(ctx.Request().Context(), bookingID, userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, booking, "Booking cancelled successfully")
}

// GetCalendarFile returns a short-lived download link for the booking's
// calendar file
// @Router /mentor/my-bookings/{id}/calendar [get]
func (c *BookingController) GetCalendarFile(ctx echo.Context) error {
	userID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	bookingID := utils.ToUUID(ctx.Param("id"))
	if bookingID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking id")
	}

	file, appErr := c.service.GetCalendarFileURL(ctx.Request().Context(), bookingID, userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, file, "Calendar file link generated successfully")
}

// ListMentorBookings lists bookings made against the calling mentor's slots
// @Summary List bookings on own slots
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.PaginatedBookingResponse
// @Router /mentor/bookings [get]
func (c *BookingController) ListMentorBookings(ctx echo.Context) error {
	mentorID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	status := ctx.QueryParam("status")
	if result := validator.ValidateStatusFilter(status); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid status filter", result)
	}

	queryParams := params.NewQueryParams(ctx)
	result, appErr := c.service.ListMentorBookings(ctx.Request().Context(), mentorID, status, *queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Bookings retrieved successfully")
}

// @Router /mentor/bookings/{id}/status [put]
func (c *BookingController) UpdateBookingStatus(ctx echo.Context) error {
	mentorID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	bookingID := utils.ToUUID(ctx.Param("id"))
	if bookingID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking id")
	}

	req := new(dto.UpdateBookingStatusRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	validationResult := validator.ValidateUpdateBookingStatusRequest(req)
	if validationResult.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	booking, appErr := c.service.UpdateBookingStatus(ctx.Request().Context(), bookingID, mentorID, entity.BookingStatus(req.Status))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, booking, "Booking status updated successfully")
}
