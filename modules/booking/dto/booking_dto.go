package dto

import (
	"time"

	"github.com/google/uuid"
)

type BookSlotRequest struct {
	AvailabilityID uuid.UUID `json:"availability_id"`
	Notes          string    `json:"notes"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

type BookingResponse struct {
	ID             uuid.UUID  `json:"id"`
	Reference      string     `json:"reference"`
	UserID         uuid.UUID  `json:"user_id"`
	MentorID       uuid.UUID  `json:"mentor_id"`
	AvailabilityID uuid.UUID  `json:"availability_id"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	MeetingType    string     `json:"meeting_type"`
	MeetingLink    string     `json:"meeting_link,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type PersonSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

type SlotSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	SessionType string    `json:"session_type"`
	MeetingType string    `json:"meeting_type"`
	Location    string    `json:"location,omitempty"`
}

type BookingDetailResponse struct {
	BookingResponse
	Mentor PersonSummary  `json:"mentor"`
	User   *PersonSummary `json:"user,omitempty"`
	Slot   SlotSummary    `json:"slot"`
}

type PaginatedBookingResponse struct {
	Items      []BookingDetailResponse `json:"items"`
	TotalItems int                     `json:"total_items"`
	TotalPages int                     `json:"total_pages"`
	PageNumber int                     `json:"page_number"`
	PageSize   int                     `json:"page_size"`
}

type CalendarFileResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
