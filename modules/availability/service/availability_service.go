package service

import (
	"context"
	"time"

	"nuon-api/core/constants"
	"nuon-api/core/errors"
	"nuon-api/core/events"
	"nuon-api/core/logger"
	"nuon-api/core/params"
	"nuon-api/modules/availability/dto"
	"nuon-api/modules/availability/entity"
	"nuon-api/modules/availability/mapper"
	"nuon-api/modules/availability/repository"
	meetingService "nuon-api/modules/meeting/service"

	"github.com/google/uuid"
)

type AvailabilityServiceInterface interface {
	CreateSlot(ctx context.Context, mentorID uuid.UUID, req *dto.CreateSlotRequest) (*dto.SlotResponse, *errors.AppError)
	ListSlots(ctx context.Context, mentorID uuid.UUID, upcomingOnly bool, queryParams params.QueryParams) (*dto.PaginatedSlotResponse, *errors.AppError)
	ListPublicSlots(ctx context.Context, mentorID uuid.UUID, queryParams params.QueryParams) (*dto.PaginatedSlotResponse, *errors.AppError)
	GetSlot(ctx context.Context, slotID uuid.UUID) (*dto.SlotResponse, *errors.AppError)
	UpdateSlot(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID, req *dto.UpdateSlotRequest) (*dto.SlotResponse, *errors.AppError)
	DeleteSlot(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID) *errors.AppError
}

type AvailabilityService struct {
	repo     repository.AvailabilityRepositoryInterface
	meetings meetingService.MeetingServiceInterface
	emitter  events.Emitter
	cache    *SlotCache
	now      func() time.Time
}

func NewAvailabilityService(
	repo repository.AvailabilityRepositoryInterface,
	meetings meetingService.MeetingServiceInterface,
	emitter events.Emitter,
	slotCache *SlotCache,
) *AvailabilityService {
	return &AvailabilityService{
		repo:     repo,
		meetings: meetings,
		emitter:  emitter,
		cache:    slotCache,
		now:      time.Now,
	}
}

type slotChangedPayload struct {
	MentorID uuid.UUID `json:"mentor_id"`
	SlotID   uuid.UUID `json:"slot_id"`
	Action   string    `json:"action"`
}

func (s *AvailabilityService) CreateSlot(ctx context.Context, mentorID uuid.UUID, req *dto.CreateSlotRequest) (*dto.SlotResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	slot := mapper.ToSlotEntity(mentorID, req)
	if appErr := s.validateWindow(slot.StartTime, slot.EndTime); appErr != nil {
		return nil, appErr
	}
	if appErr := validateCapacity(slot); appErr != nil {
		return nil, appErr
	}

	// Reject obvious overlaps before paying for a meeting link. The check is
	// repeated under the mentor lock below.
	err := s.repo.Transaction(ctx, func(tx repository.SlotTx) error {
		return checkOverlap(ctx, tx, slot, uuid.Nil)
	})
	if err != nil {
		return nil, errors.AsAppError(err, errors.ErrCreateFailed, "failed to create slot")
	}

	if slot.MeetingType == entity.MeetingTypeZoom && slot.MeetingLink == nil {
		s.attachMeeting(ctx, slot)
	}

	var created *entity.AvailabilitySlot
	err = s.repo.Transaction(ctx, func(tx repository.SlotTx) error {
		if err := tx.LockMentorSchedule(ctx, mentorID); err != nil {
			return err
		}
		if err := checkOverlap(ctx, tx, slot, uuid.Nil); err != nil {
			return err
		}

		var err error
		created, err = tx.CreateSlot(ctx, slot)
		return err
	})
	if err != nil {
		s.releaseMeeting(ctx, slot)
		return nil, errors.AsAppError(err, errors.ErrCreateFailed, "failed to create slot")
	}

	logger.Info("AvailabilityService:CreateSlot:Created", "slot_id", created.ID, "mentor_id", mentorID)

	response := mapper.ToSlotResponse(created)
	s.emitter.Emit(ctx, events.NewAvailability, response)
	s.emitter.Emit(ctx, events.MentorAvailabilityChanged, slotChangedPayload{MentorID: mentorID, SlotID: created.ID, Action: "created"})
	s.cache.Invalidate(ctx, mentorID)

	return response, nil
}

// attachMeeting provisions a meeting link. Failure leaves the slot without a
// link and does not fail the create.
func (s *AvailabilityService) attachMeeting(ctx context.Context, slot *entity.AvailabilitySlot) {
	if s.meetings == nil {
		return
	}

	meeting, appErr := s.meetings.Provision(ctx, meetingService.MeetingRequest{
		Topic:    slot.Title,
		Start:    slot.StartTime,
		Duration: slot.Duration,
		Agenda:   slot.Description,
	})
	if appErr != nil {
		logger.Warn("AvailabilityService:CreateSlot:MeetingLink", "mentor_id", slot.MentorID, "error", appErr)
		return
	}

	slot.MeetingLink = &meeting.JoinURL
	slot.MeetingID = &meeting.ID
}

// releaseMeeting deletes the meeting provisioned for a slot that was not
// stored. A failed delete is logged with the meeting id for manual cleanup.
func (s *AvailabilityService) releaseMeeting(ctx context.Context, slot *entity.AvailabilitySlot) {
	if s.meetings == nil || slot.MeetingID == nil {
		return
	}
	if appErr := s.meetings.Release(ctx, *slot.MeetingID); appErr != nil {
		logger.Error("AvailabilityService:CreateSlot:OrphanedMeeting", "mentor_id", slot.MentorID, "meeting_id", *slot.MeetingID, "error", appErr)
	}
}

func (s *AvailabilityService) ListSlots(ctx context.Context, mentorID uuid.UUID, upcomingOnly bool, queryParams params.QueryParams) (*dto.PaginatedSlotResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	page, err := s.repo.ListSlots(ctx, repository.SlotFilter{
		MentorID:     mentorID,
		UpcomingOnly: upcomingOnly,
		Now:          s.now(),
	}, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list slots", err)
	}

	return mapper.ToPaginatedSlotResponse(page), nil
}

func (s *AvailabilityService) ListPublicSlots(ctx context.Context, mentorID uuid.UUID, queryParams params.QueryParams) (*dto.PaginatedSlotResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if cached, ok := s.cache.Get(ctx, mentorID, queryParams); ok {
		return cached, nil
	}

	result, appErr := s.ListSlots(ctx, mentorID, true, queryParams)
	if appErr != nil {
		return nil, appErr
	}

	s.cache.Set(ctx, mentorID, queryParams, result)
	return result, nil
}

func (s *AvailabilityService) GetSlot(ctx context.Context, slotID uuid.UUID) (*dto.SlotResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get slot", err)
	}
	if slot == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "slot not found", nil)
	}
	return mapper.ToSlotResponse(slot), nil
}

func (s *AvailabilityService) UpdateSlot(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID, req *dto.UpdateSlotRequest) (*dto.SlotResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	var updated *entity.AvailabilitySlot
	err := s.repo.Transaction(ctx, func(tx repository.SlotTx) error {
		if err := tx.LockMentorSchedule(ctx, mentorID); err != nil {
			return err
		}

		slot, err := tx.GetSlotForUpdate(ctx, slotID, mentorID)
		if err != nil {
			return err
		}
		if slot == nil {
			return errors.NewAppError(errors.ErrNotFound, "slot not found", nil)
		}
		if slot.HasBookings() {
			return errors.NewAppError(errors.ErrSlotLocked, "cannot modify a slot that has bookings", nil)
		}

		timesChanged := req.StartTime != nil || req.EndTime != nil
		activating := req.IsActive != nil && *req.IsActive && !slot.IsActive

		mapper.ApplySlotPatch(slot, req)

		if timesChanged {
			if appErr := s.validateWindow(slot.StartTime, slot.EndTime); appErr != nil {
				return appErr
			}
		}
		if appErr := validateCapacity(slot); appErr != nil {
			return appErr
		}
		if slot.IsActive && (timesChanged || activating) {
			if err := checkOverlap(ctx, tx, slot, slot.ID); err != nil {
				return err
			}
		}

		updated, err = tx.UpdateSlot(ctx, slot)
		return err
	})
	if err != nil {
		return nil, errors.AsAppError(err, errors.ErrUpdateFailed, "failed to update slot")
	}

	s.emitter.Emit(ctx, events.MentorAvailabilityChanged, slotChangedPayload{MentorID: mentorID, SlotID: slotID, Action: "updated"})
	s.cache.Invalidate(ctx, mentorID)

	return mapper.ToSlotResponse(updated), nil
}

func (s *AvailabilityService) DeleteSlot(ctx context.Context, slotID uuid.UUID, mentorID uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	err := s.repo.Transaction(ctx, func(tx repository.SlotTx) error {
		slot, err := tx.GetSlotForUpdate(ctx, slotID, mentorID)
		if err != nil {
			return err
		}
		if slot == nil {
			return errors.NewAppError(errors.ErrNotFound, "slot not found", nil)
		}
		if slot.HasBookings() {
			return errors.NewAppError(errors.ErrSlotLocked, "cannot delete a slot that has bookings; cancel them first", nil)
		}
		return tx.DeleteSlot(ctx, slotID)
	})
	if err != nil {
		return errors.AsAppError(err, errors.ErrDeleteFailed, "failed to delete slot")
	}

	logger.Info("AvailabilityService:DeleteSlot:Deleted", "slot_id", slotID, "mentor_id", mentorID)

	s.emitter.Emit(ctx, events.MentorAvailabilityChanged, slotChangedPayload{MentorID: mentorID, SlotID: slotID, Action: "deleted"})
	s.cache.Invalidate(ctx, mentorID)
	return nil
}

func (s *AvailabilityService) validateWindow(start, end time.Time) *errors.AppError {
	if !start.Before(end) {
		return errors.NewAppError(errors.ErrInvalidTimeRange, "start_time must be before end_time", nil)
	}
	if !start.After(s.now()) {
		return errors.NewAppError(errors.ErrPastStartTime, "start_time must be in the future", nil)
	}
	return nil
}

func validateCapacity(slot *entity.AvailabilitySlot) *errors.AppError {
	if slot.MaxBookings < 1 {
		return errors.NewAppError(errors.ErrInvalidInput, "max_bookings must be at least 1", nil)
	}
	if slot.SessionType == entity.SessionTypeOneOnOne && slot.MaxBookings != 1 {
		return errors.NewAppError(errors.ErrInvalidInput, "one-on-one sessions take exactly one booking", nil)
	}
	if slot.Duration <= 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "duration must be positive", nil)
	}
	return nil
}

func checkOverlap(ctx context.Context, tx repository.SlotTx, slot *entity.AvailabilitySlot, excludeID uuid.UUID) error {
	existing, err := tx.FindOverlappingSlot(ctx, slot.MentorID, slot.StartTime, slot.EndTime, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.NewAppError(errors.ErrOverlappingSlot, "slot overlaps an existing slot", nil)
	}
	return nil
}
