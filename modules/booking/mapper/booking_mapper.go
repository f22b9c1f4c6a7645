package mapper

import (
	coreDto "nuon-api/core/dto"
	"nuon-api/core/utils"
	"nuon-api/modules/booking/dto"
	"nuon-api/modules/booking/entity"
)

func ToBookingResponse(b *entity.Booking) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:             b.ID,
		Reference:      b.Reference,
		UserID:         b.UserID,
		MentorID:       b.MentorID,
		AvailabilityID: b.AvailabilityID,
		Status:         string(b.Status),
		Notes:          b.Notes,
		Amount:         b.Amount,
		Currency:       b.Currency,
		MeetingType:    b.MeetingType,
		MeetingLink:    utils.StringValue(b.MeetingLink),
		CancelledAt:    b.CancelledAt,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// ToBookingDetailResponse includes the booking user only when withUser is
// set; users listing their own bookings do not need themselves repeated.
func ToBookingDetailResponse(d *entity.BookingDetail, withUser bool) *dto.BookingDetailResponse {
	resp := &dto.BookingDetailResponse{
		BookingResponse: *ToBookingResponse(&d.Booking),
		Mentor: dto.PersonSummary{
			ID:        d.MentorID,
			Name:      d.MentorName,
			Email:     utils.StringValue(d.MentorEmail),
			AvatarURL: utils.StringValue(d.MentorAvatar),
		},
		Slot: dto.SlotSummary{
			ID:          d.AvailabilityID,
			Title:       d.SlotTitle,
			StartTime:   d.SlotStartTime,
			EndTime:     d.SlotEndTime,
			SessionType: d.SlotSessionType,
			MeetingType: d.MeetingType,
			Location:    utils.StringValue(d.SlotLocation),
		},
	}
	if withUser {
		resp.User = &dto.PersonSummary{
			ID:    d.UserID,
			Name:  d.UserName,
			Email: utils.StringValue(d.UserEmail),
		}
	}
	return resp
}

func ToBookingDetailResponses(details []entity.BookingDetail, withUser bool) []dto.BookingDetailResponse {
	out := make([]dto.BookingDetailResponse, len(details))
	for i := range details {
		out[i] = *ToBookingDetailResponse(&details[i], withUser)
	}
	return out
}

func ToPaginatedBookingResponse(page *entity.PaginatedBookingDetail) *dto.PaginatedBookingResponse {
	if page == nil {
		return &dto.PaginatedBookingResponse{Items: []dto.BookingDetailResponse{}}
	}
	return &dto.PaginatedBookingResponse{
		Items:      ToBookingDetailResponses(page.Items, true),
		TotalItems: page.TotalItems,
		TotalPages: coreDto.TotalPages(page.TotalItems, page.PageSize),
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}
