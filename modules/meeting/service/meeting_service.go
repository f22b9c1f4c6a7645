package service

import (
	"context"
	"time"

	"nuon-api/core/errors"
	"nuon-api/core/logger"
)

type MeetingServiceInterface interface {
	Provision(ctx context.Context, req MeetingRequest) (*Meeting, *errors.AppError)
	Release(ctx context.Context, meetingID string) *errors.AppError
}

type MeetingService struct {
	provisioner Provisioner
	timeout     time.Duration
}

func NewMeetingService(provisioner Provisioner, timeout time.Duration) MeetingServiceInterface {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MeetingService{provisioner: provisioner, timeout: timeout}
}

// Provision creates a meeting within the configured timeout. Errors carry
// ErrExternalProvider; callers treat them as non-fatal.
func (s *MeetingService) Provision(ctx context.Context, req MeetingRequest) (*Meeting, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	meeting, err := s.provisioner.CreateMeeting(ctx, req)
	if err != nil {
		logger.Warn("MeetingService:Provision:Failed", "topic", req.Topic, "error", err)
		return nil, errors.NewAppError(errors.ErrExternalProvider, "failed to create meeting link", err)
	}

	logger.Info("MeetingService:Provision:Created", "provider", meeting.Provider, "meeting_id", meeting.ID)
	return meeting, nil
}

// Release deletes a meeting that was provisioned for a slot that was never
// stored. It runs even when ctx is already cancelled.
func (s *MeetingService) Release(ctx context.Context, meetingID string) *errors.AppError {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.provisioner.DeleteMeeting(ctx, meetingID); err != nil {
		logger.Error("MeetingService:Release:Failed", "meeting_id", meetingID, "error", err)
		return errors.NewAppError(errors.ErrExternalProvider, "failed to delete meeting", err)
	}

	logger.Info("MeetingService:Release:Deleted", "meeting_id", meetingID)
	return nil
}
