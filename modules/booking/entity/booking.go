package entity

import (
	"time"

	"nuon-api/core/entity"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// IsActive reports whether the booking holds a seat on its slot.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	Reference       string        `db:"reference" json:"reference"`
	UserID          uuid.UUID     `db:"user_id" json:"user_id"`
	MentorID        uuid.UUID     `db:"mentor_id" json:"mentor_id"`
	AvailabilityID  uuid.UUID     `db:"availability_id" json:"availability_id"`
	Status          BookingStatus `db:"status" json:"status"`
	Notes           string        `db:"notes" json:"notes"`
	Amount          float64       `db:"amount" json:"amount"`
	Currency        string        `db:"currency" json:"currency"`
	MeetingType     string        `db:"meeting_type" json:"meeting_type"`
	MeetingLink     *string       `db:"meeting_link" json:"meeting_link,omitempty"`
	CalendarFileKey *string       `db:"calendar_file_key" json:"-"`
	CancelledAt     *time.Time    `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingDetail is a booking joined with its slot and both parties.
type BookingDetail struct {
	Booking

	UserName     string  `db:"user_name"`
	UserEmail    *string `db:"user_email"`
	MentorName   string  `db:"mentor_name"`
	MentorEmail  *string `db:"mentor_email"`
	MentorAvatar *string `db:"mentor_avatar"`

	SlotTitle       string    `db:"slot_title"`
	SlotDescription string    `db:"slot_description"`
	SlotStartTime   time.Time `db:"slot_start_time"`
	SlotEndTime     time.Time `db:"slot_end_time"`
	SlotSessionType string    `db:"slot_session_type"`
	SlotLocation    *string   `db:"slot_location"`
}

type PaginatedBookingDetail = entity.Pagination[BookingDetail]
