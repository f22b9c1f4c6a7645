package validator

import (
	"nuon-api/core/validator"
	"nuon-api/modules/booking/dto"
	"nuon-api/modules/booking/entity"

	"github.com/google/uuid"
)

func ValidateBookSlotRequest(req *dto.BookSlotRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	if req.AvailabilityID == uuid.Nil {
		result.AddError("availability_id", "is required")
	}
	result.MaxLength("notes", req.Notes, 1000)
	return result
}

func ValidateStatusFilter(status string) *validator.ValidationResult {
	result := validator.NewValidationResult()
	if status != "" && !entity.BookingStatus(status).Valid() {
		result.AddError("status", "must be one of pending, confirmed, cancelled, completed")
	}
	return result
}

// ValidateUpdateBookingStatusRequest accepts only the states a mentor can move
// a booking into.
func ValidateUpdateBookingStatusRequest(req *dto.UpdateBookingStatusRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.OneOf("status", req.Status,
		string(entity.BookingStatusConfirmed),
		string(entity.BookingStatusCompleted),
		string(entity.BookingStatusCancelled),
	)
	return result
}
