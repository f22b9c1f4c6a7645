package service

import (
	"context"
	"time"
)

type MeetingRequest struct {
	Topic    string
	Start    time.Time
	Duration int // minutes
	Agenda   string
}

type Meeting struct {
	ID       string `json:"id"`
	JoinURL  string `json:"join_url"`
	Provider string `json:"provider"`
}

// Provisioner creates a video meeting for a slot and deletes it again when
// the slot is never stored.
type Provisioner interface {
	CreateMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
}
