package mapper

import (
	"strings"

	coreDto "nuon-api/core/dto"
	"nuon-api/core/utils"
	"nuon-api/modules/availability/dto"
	"nuon-api/modules/availability/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ToSlotEntity fills defaults for fields the request left empty.
func ToSlotEntity(mentorID uuid.UUID, req *dto.CreateSlotRequest) *entity.AvailabilitySlot {
	slot := &entity.AvailabilitySlot{
		MentorID:        mentorID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		Duration:        req.Duration,
		MaxBookings:     req.MaxBookings,
		Price:           req.Price,
		Currency:        strings.ToUpper(strings.TrimSpace(req.Currency)),
		SessionType:     entity.SessionType(req.SessionType),
		MeetingType:     entity.MeetingType(req.MeetingType),
		MeetingLink:     utils.StringPtr(strings.TrimSpace(req.MeetingLink)),
		Location:        utils.StringPtr(strings.TrimSpace(req.Location)),
		Specializations: pq.StringArray(normalizeTags(req.Specializations)),
		IsActive:        true,
	}

	if slot.Duration <= 0 {
		slot.Duration = int(slot.EndTime.Sub(slot.StartTime).Minutes())
	}
	if slot.MaxBookings <= 0 {
		slot.MaxBookings = 1
	}
	if slot.Currency == "" {
		slot.Currency = "INR"
	}
	if slot.SessionType == "" {
		slot.SessionType = entity.SessionTypeOneOnOne
	}
	if slot.MeetingType == "" {
		slot.MeetingType = entity.MeetingTypeZoom
	}
	return slot
}

// ApplySlotPatch copies the non-nil fields of req onto slot.
func ApplySlotPatch(slot *entity.AvailabilitySlot, req *dto.UpdateSlotRequest) {
	if req.Title != nil {
		slot.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		slot.Description = strings.TrimSpace(*req.Description)
	}
	if req.StartTime != nil {
		slot.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		slot.EndTime = req.EndTime.UTC()
	}
	if req.Duration != nil {
		slot.Duration = *req.Duration
	} else if req.StartTime != nil || req.EndTime != nil {
		slot.Duration = int(slot.EndTime.Sub(slot.StartTime).Minutes())
	}
	if req.MaxBookings != nil {
		slot.MaxBookings = *req.MaxBookings
	}
	if req.Price != nil {
		slot.Price = *req.Price
	}
	if req.SessionType != nil {
		slot.SessionType = entity.SessionType(*req.SessionType)
	}
	if req.MeetingType != nil {
		slot.MeetingType = entity.MeetingType(*req.MeetingType)
	}
	if req.MeetingLink != nil {
		slot.MeetingLink = utils.StringPtr(strings.TrimSpace(*req.MeetingLink))
	}
	if req.Location != nil {
		slot.Location = utils.StringPtr(strings.TrimSpace(*req.Location))
	}
	if req.Specializations != nil {
		slot.Specializations = pq.StringArray(normalizeTags(*req.Specializations))
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}
}

func ToSlotResponse(slot *entity.AvailabilitySlot) *dto.SlotResponse {
	specs := []string(slot.Specializations)
	if specs == nil {
		specs = []string{}
	}
	available := slot.MaxBookings - slot.CurrentBookings
	if available < 0 {
		available = 0
	}
	return &dto.SlotResponse{
		ID:              slot.ID,
		MentorID:        slot.MentorID,
		Title:           slot.Title,
		Description:     slot.Description,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		Duration:        slot.Duration,
		MaxBookings:     slot.MaxBookings,
		CurrentBookings: slot.CurrentBookings,
		AvailableSpots:  available,
		Price:           slot.Price,
		Currency:        slot.Currency,
		SessionType:     string(slot.SessionType),
		MeetingType:     string(slot.MeetingType),
		MeetingLink:     utils.StringValue(slot.MeetingLink),
		Location:        utils.StringValue(slot.Location),
		Specializations: specs,
		IsActive:        slot.IsActive,
		CreatedAt:       slot.CreatedAt,
		UpdatedAt:       slot.UpdatedAt,
	}
}

func ToPaginatedSlotResponse(page *entity.PaginatedSlotEntity) *dto.PaginatedSlotResponse {
	if page == nil {
		return &dto.PaginatedSlotResponse{Items: []dto.SlotResponse{}}
	}

	items := make([]dto.SlotResponse, len(page.Items))
	for i := range page.Items {
		items[i] = *ToSlotResponse(&page.Items[i])
	}

	return &dto.PaginatedSlotResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		TotalPages: coreDto.TotalPages(page.TotalItems, page.PageSize),
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
