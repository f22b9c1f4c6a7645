package mapper

import (
	coreDto "nuon-api/core/dto"
	"nuon-api/modules/notification/dto"
	"nuon-api/modules/notification/entity"
)

func ToNotificationResponse(n *entity.Notification) dto.NotificationResponse {
	data := map[string]any(n.Data)
	if data == nil {
		data = map[string]any{}
	}
	return dto.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Data:      data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func ToPaginatedNotificationResponse(page *entity.PaginatedNotificationEntity) *dto.PaginatedNotificationResponse {
	if page == nil {
		return &dto.PaginatedNotificationResponse{Items: []dto.NotificationResponse{}}
	}
	items := make([]dto.NotificationResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToNotificationResponse(&page.Items[i])
	}
	return &dto.PaginatedNotificationResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		TotalPages: coreDto.TotalPages(page.TotalItems, page.PageSize),
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}
