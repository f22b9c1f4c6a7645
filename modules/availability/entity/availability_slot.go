package entity

import (
	"time"

	"nuon-api/core/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type SessionType string

const (
	SessionTypeOneOnOne SessionType = "one-on-one"
	SessionTypeGroup    SessionType = "group"
)

type MeetingType string

const (
	MeetingTypeZoom     MeetingType = "zoom"
	MeetingTypeInPerson MeetingType = "in-person"
	MeetingTypePhone    MeetingType = "phone"
)

// AvailabilitySlot is a bookable window published by a mentor.
type AvailabilitySlot struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	MentorID        uuid.UUID      `db:"mentor_id" json:"mentor_id"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	StartTime       time.Time      `db:"start_time" json:"start_time"`
	EndTime         time.Time      `db:"end_time" json:"end_time"`
	Duration        int            `db:"duration" json:"duration"`
	MaxBookings     int            `db:"max_bookings" json:"max_bookings"`
	CurrentBookings int            `db:"current_bookings" json:"current_bookings"`
	Price           float64        `db:"price" json:"price"`
	Currency        string         `db:"currency" json:"currency"`
	SessionType     SessionType    `db:"session_type" json:"session_type"`
	MeetingType     MeetingType    `db:"meeting_type" json:"meeting_type"`
	MeetingLink     *string        `db:"meeting_link" json:"meeting_link,omitempty"`
	MeetingID       *string        `db:"meeting_id" json:"meeting_id,omitempty"`
	Location        *string        `db:"location" json:"location,omitempty"`
	Specializations pq.StringArray `db:"specializations" json:"specializations"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether [start,end) intersects the slot's window.
// Touching endpoints do not overlap.
func (s *AvailabilitySlot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}

func (s *AvailabilitySlot) HasBookings() bool {
	return s.CurrentBookings > 0
}

func (s *AvailabilitySlot) IsFull() bool {
	return s.CurrentBookings >= s.MaxBookings
}

// IsBookable reports whether a new booking may be taken at now.
func (s *AvailabilitySlot) IsBookable(now time.Time) bool {
	return s.IsActive && !s.IsFull() && s.StartTime.After(now)
}

type PaginatedSlotEntity = entity.Pagination[AvailabilitySlot]
