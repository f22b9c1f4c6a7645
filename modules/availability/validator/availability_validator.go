package validator

import (
	"net/url"

	"nuon-api/core/validator"
	"nuon-api/modules/availability/dto"
	"nuon-api/modules/availability/entity"
)

var (
	sessionTypes = []string{string(entity.SessionTypeOneOnOne), string(entity.SessionTypeGroup)}
	meetingTypes = []string{string(entity.MeetingTypeZoom), string(entity.MeetingTypeInPerson), string(entity.MeetingTypePhone)}
)

// ValidateCreateSlotRequest checks request shape only. Time ordering and
// overlap rules are enforced by the service.
func ValidateCreateSlotRequest(req *dto.CreateSlotRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()

	result.Required("title", req.Title)
	result.MaxLength("title", req.Title, 200)
	result.MaxLength("description", req.Description, 2000)

	if req.StartTime.IsZero() {
		result.AddError("start_time", "is required")
	}
	if req.EndTime.IsZero() {
		result.AddError("end_time", "is required")
	}
	if req.Duration < 0 {
		result.AddError("duration", "must not be negative")
	}
	if req.MaxBookings < 0 {
		result.AddError("max_bookings", "must not be negative")
	}
	validatePrice(result, req.Price)
	if req.Currency != "" && len(req.Currency) != 3 {
		result.AddError("currency", "must be a 3-letter ISO code")
	}
	if req.SessionType != "" {
		result.OneOf("session_type", req.SessionType, sessionTypes...)
	}
	if req.MeetingType != "" {
		result.OneOf("meeting_type", req.MeetingType, meetingTypes...)
	}
	if req.MeetingLink != "" {
		validateLink(result, req.MeetingLink)
	}
	if len(req.Specializations) > 20 {
		result.AddError("specializations", "must have at most 20 entries")
	}
	return result
}

func ValidateUpdateSlotRequest(req *dto.UpdateSlotRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()

	if req.Title != nil {
		result.Required("title", *req.Title)
		result.MaxLength("title", *req.Title, 200)
	}
	if req.Description != nil {
		result.MaxLength("description", *req.Description, 2000)
	}
	if req.Duration != nil && *req.Duration <= 0 {
		result.AddError("duration", "must be positive")
	}
	if req.MaxBookings != nil && *req.MaxBookings < 1 {
		result.AddError("max_bookings", "must be at least 1")
	}
	if req.Price != nil {
		validatePrice(result, *req.Price)
	}
	if req.SessionType != nil {
		result.OneOf("session_type", *req.SessionType, sessionTypes...)
	}
	if req.MeetingType != nil {
		result.OneOf("meeting_type", *req.MeetingType, meetingTypes...)
	}
	if req.MeetingLink != nil && *req.MeetingLink != "" {
		validateLink(result, *req.MeetingLink)
	}
	if req.Specializations != nil && len(*req.Specializations) > 20 {
		result.AddError("specializations", "must have at most 20 entries")
	}
	return result
}

func validateLink(result *validator.ValidationResult, link string) {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		result.AddError("meeting_link", "must be an http(s) URL")
	}
}

// MaxPrice is the largest value the NUMERIC(10,2) price column holds.
const MaxPrice = 99999999.99

func validatePrice(result *validator.ValidationResult, price float64) {
	switch {
	case price < 0:
		result.AddError("price", "must not be negative")
	case price > MaxPrice:
		result.AddError("price", "must not exceed 99999999.99")
	}
}
