package controller

import (
	"strconv"

	"nuon-api/core/controller"
	"nuon-api/core/errors"
	"nuon-api/core/params"
	"nuon-api/core/utils"
	"nuon-api/modules/availability/dto"
	"nuon-api/modules/availability/service"
	"nuon-api/modules/availability/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AvailabilityController struct {
	service service.AvailabilityServiceInterface
	controller.BaseController
}

func NewAvailabilityController(svc service.AvailabilityServiceInterface) *AvailabilityController {
	return &AvailabilityController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// CreateSlot publishes a new availability slot for the calling mentor
// @Summary Create availability slot
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSlotRequest true "Slot"
// @Success 201 {object} dto.SlotResponse
// @Failure 400 {object} controller.ErrorResponse
// @Router /mentor/availability [post]
func (c *AvailabilityController) CreateSlot(ctx echo.Context) error {
	mentorID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.CreateSlotRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	validationResult := validator.ValidateCreateSlotRequest(req)
	if validationResult.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	slot, appErr := c.service.CreateSlot(ctx.Request().Context(), mentorID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, slot, "Availability slot created successfully")
}

// ListMySlots lists the calling mentor's slots
// @Summary List own availability slots
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param upcoming query bool false "Only future, active slots"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.PaginatedSlotResponse
// @Router /mentor/availability [get]
func (c *AvailabilityController) ListMySlots(ctx echo.Context) error {
	mentorID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	upcoming, _ := strconv.ParseBool(ctx.QueryParam("upcoming"))
	queryParams := params.NewQueryParams(ctx)

	result, appErr := c.service.ListSlots(ctx.Request().Context(), mentorID, upcoming, *queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Availability slots retrieved successfully")
}

// UpdateSlot patches a slot that has no bookings yet
// @Router /mentor/availability/{id} [put]
func (c *AvailabilityController) UpdateSlot(ctx echo.Context) error {
	mentorID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	slotID := utils.ToUUID(ctx.Param("id"))
	if slotID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid slot id")
	}

	req := new(dto.UpdateSlotRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	validationResult := validator.ValidateUpdateSlotRequest(req)
	if validationResult.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request data", validationResult)
	}

	slot, appErr := c.service.UpdateSlot(ctx.Request().Context(), slotID, mentorID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, slot, "Availability slot updated successfully")
}

// DeleteSlot removes an unbooked slot
// @Router /mentor/availability/{id} [delete]
func (c *AvailabilityController) DeleteSlot(ctx echo.Context) error {
	mentorID, ok := controller.GetUserID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	slotID := utils.ToUUID(ctx.Param("id"))
	if slotID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid slot id")
	}

	if appErr := c.service.DeleteSlot(ctx.Request().Context(), slotID, mentorID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Availability slot deleted successfully")
}

// ListPublicSlots lists a mentor's upcoming slots. No authentication.
// @Summary Public mentor availability
// @Tags Availability
// @Produce json
// @Param mentorId path string true "Mentor ID"
// @Success 200 {object} dto.PaginatedSlotResponse
// @Router /mentor/{mentorId}/availability [get]
func (c *AvailabilityController) ListPublicSlots(ctx echo.Context) error {
	mentorID := utils.ToUUID(ctx.Param("mentorId"))
	if mentorID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid mentor id")
	}

	queryParams := params.NewQueryParams(ctx)
	result, appErr := c.service.ListPublicSlots(ctx.Request().Context(), mentorID, *queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Availability slots retrieved successfully")
}

func (c *AvailabilityController) GetSlot(ctx echo.Context) error {
	slotID := utils.ToUUID(ctx.Param("id"))
	if slotID == uuid.Nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid slot id")
	}

	slot, appErr := c.service.GetSlot(ctx.Request().Context(), slotID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, slot, "Availability slot retrieved successfully")
}
