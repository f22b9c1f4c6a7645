package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSlotRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Duration        int       `json:"duration"`
	MaxBookings     int       `json:"max_bookings"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	SessionType     string    `json:"session_type"`
	MeetingType     string    `json:"meeting_type"`
	MeetingLink     string    `json:"meeting_link"`
	Location        string    `json:"location"`
	Specializations []string  `json:"specializations"`
}

// UpdateSlotRequest is a patch: nil fields are left unchanged.
type UpdateSlotRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Duration        *int       `json:"duration"`
	MaxBookings     *int       `json:"max_bookings"`
	Price           *float64   `json:"price"`
	SessionType     *string    `json:"session_type"`
	MeetingType     *string    `json:"meeting_type"`
	MeetingLink     *string    `json:"meeting_link"`
	Location        *string    `json:"location"`
	Specializations *[]string  `json:"specializations"`
	IsActive        *bool      `json:"is_active"`
}

type SlotResponse struct {
	ID              uuid.UUID `json:"id"`
	MentorID        uuid.UUID `json:"mentor_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Duration        int       `json:"duration"`
	MaxBookings     int       `json:"max_bookings"`
	CurrentBookings int       `json:"current_bookings"`
	AvailableSpots  int       `json:"available_spots"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	SessionType     string    `json:"session_type"`
	MeetingType     string    `json:"meeting_type"`
	MeetingLink     string    `json:"meeting_link,omitempty"`
	Location        string    `json:"location,omitempty"`
	Specializations []string  `json:"specializations"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PaginatedSlotResponse struct {
	Items      []SlotResponse `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPages int            `json:"total_pages"`
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
}
