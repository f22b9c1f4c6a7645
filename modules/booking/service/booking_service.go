package service

import (
	"context"
	stderrors "errors"
	"time"

	"nuon-api/core/constants"
	"nuon-api/core/errors"
	"nuon-api/core/events"
	"nuon-api/core/logger"
	"nuon-api/core/params"
	"nuon-api/core/queue"
	"nuon-api/core/storage"
	"nuon-api/core/utils"
	"nuon-api/modules/booking/dto"
	"nuon-api/modules/booking/entity"
	"nuon-api/modules/booking/mapper"
	"nuon-api/modules/booking/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type BookingServiceInterface interface {
	BookSlot(ctx context.Context, userID uuid.UUID, req *dto.BookSlotRequest) (*dto.BookingResponse, *errors.AppError)
	ListMyBookings(ctx context.Context, userID uuid.UUID, status string) ([]dto.BookingDetailResponse, *errors.AppError)
	ListMentorBookings(ctx context.Context, mentorID uuid.UUID, status string, queryParams params.QueryParams) (*dto.PaginatedBookingResponse, *errors.AppError)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, mentorID uuid.UUID, status entity.BookingStatus) (*dto.BookingResponse, *errors.AppError)
	CancelMyBooking(ctx context.Context, bookingID uuid.UUID, userID uuid.UUID) (*dto.BookingResponse, *errors.AppError)
	GetCalendarFileURL(ctx context.Context, bookingID uuid.UUID, userID uuid.UUID) (*dto.CalendarFileResponse, *errors.AppError)
	GenerateCalendarFile(ctx context.Context, bookingID uuid.UUID) *errors.AppError
}

// SlotCacheInvalidator drops cached public listings of a mentor.
type SlotCacheInvalidator interface {
	Invalidate(ctx context.Context, mentorID uuid.UUID)
}

// CalendarFileTask is the payload of the booking:calendar-file task.
type CalendarFileTask struct {
	BookingID uuid.UUID `json:"booking_id"`
}

type BookingUpdatePayload struct {
	Action  string               `json:"action"`
	Booking *dto.BookingResponse `json:"booking"`
}

type slotChangedPayload struct {
	MentorID uuid.UUID `json:"mentor_id"`
	SlotID   uuid.UUID `json:"slot_id"`
	Action   string    `json:"action"`
}

type BookingService struct {
	repo       repository.BookingRepositoryInterface
	storage    storage.ObjectStorage
	enqueuer   queue.Enqueuer
	emitter    events.Emitter
	slots      SlotCacheInvalidator
	presignTTL time.Duration
	now        func() time.Time
}

// NewBookingService builds the service. enqueuer may be nil, in which case
// calendar files are not generated.
func NewBookingService(
	repo repository.BookingRepositoryInterface,
	objectStorage storage.ObjectStorage,
	enqueuer queue.Enqueuer,
	emitter events.Emitter,
	slots SlotCacheInvalidator,
	presignTTL time.Duration,
) *BookingService {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &BookingService{
		repo:       repo,
		storage:    objectStorage,
		enqueuer:   enqueuer,
		emitter:    emitter,
		slots:      slots,
		presignTTL: presignTTL,
		now:        time.Now,
	}
}

func (s *BookingService) BookSlot(ctx context.Context, userID uuid.UUID, req *dto.BookSlotRequest) (*dto.BookingResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	var booking *entity.Booking
	err := s.repo.Transaction(ctx, func(tx repository.BookingTx) error {
		slot, err := tx.LockSlot(ctx, req.AvailabilityID)
		if err != nil {
			return err
		}
		if slot == nil {
			return errors.NewAppError(errors.ErrNotFound, "slot not found", nil)
		}
		if slot.MentorID == userID {
			return errors.NewAppError(errors.ErrInvalidInput, "mentors cannot book their own slots", nil)
		}

		exists, err := tx.HasActiveBooking(ctx, userID, slot.ID)
		if err != nil {
			return err
		}
		if exists {
			return errors.NewAppError(errors.ErrDuplicateBooking, "you already have an active booking for this slot", nil)
		}
		if !slot.IsBookable(s.now()) {
			return errors.NewAppError(errors.ErrSlotUnavailable, "slot is no longer available", nil)
		}

		reference, err := utils.GenerateBookingReference()
		if err != nil {
			return err
		}

		booking, err = tx.CreateBooking(ctx, &entity.Booking{
			Reference:      reference,
			UserID:         userID,
			MentorID:       slot.MentorID,
			AvailabilityID: slot.ID,
			Status:         entity.BookingStatusPending,
			Notes:          req.Notes,
			Amount:         slot.Price,
			Currency:       slot.Currency,
			MeetingType:    string(slot.MeetingType),
			MeetingLink:    slot.MeetingLink,
		})
		if err != nil {
			return err
		}
		return tx.AdjustSlotBookings(ctx, slot.ID, 1)
	})
	if err != nil {
		return nil, errors.AsAppError(err, errors.ErrCreateFailed, "failed to book slot")
	}

	logger.Info("BookingService:BookSlot:Created", "booking_id", booking.ID, "slot_id", booking.AvailabilityID, "user_id", userID)

	response := mapper.ToBookingResponse(booking)
	s.afterChange(ctx, booking, response, "created", true)
	return response, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, userID uuid.UUID, status string) ([]dto.BookingDetailResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	details, err := s.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list bookings", err)
	}
	return mapper.ToBookingDetailResponses(details, false), nil
}

func (s *BookingService) ListMentorBookings(ctx context.Context, mentorID uuid.UUID, status string, queryParams params.QueryParams) (*dto.PaginatedBookingResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	page, err := s.repo.ListByMentor(ctx, mentorID, status, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list bookings", err)
	}
	return mapper.ToPaginatedBookingResponse(page), nil
}

func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, mentorID uuid.UUID, status entity.BookingStatus) (*dto.BookingResponse, *errors.AppError) {
	return s.transition(ctx, bookingID, status, func(b *entity.Booking) bool {
		return b.MentorID == mentorID
	})
}

func (s *BookingService) CancelMyBooking(ctx context.Context, bookingID uuid.UUID, userID uuid.UUID) (*dto.BookingResponse, *errors.AppError) {
	return s.transition(ctx, bookingID, entity.BookingStatusCancelled, func(b *entity.Booking) bool {
		return b.UserID == userID
	})
}

// transition moves a booking to next. The slot row is locked before the
// booking row, the same order BookSlot takes, and a cancellation releases
// the seat in the same transaction.
func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, next entity.BookingStatus, owns func(*entity.Booking) bool) (*dto.BookingResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	existing, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get booking", err)
	}
	if existing == nil || !owns(existing) {
		return nil, errors.NewAppError(errors.ErrNotFound, "booking not found", nil)
	}

	var updated *entity.Booking
	err = s.repo.Transaction(ctx, func(tx repository.BookingTx) error {
		if _, err := tx.LockSlot(ctx, existing.AvailabilityID); err != nil {
			return err
		}

		booking, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return errors.NewAppError(errors.ErrNotFound, "booking not found", nil)
		}
		if !booking.Status.CanTransitionTo(next) {
			return errors.NewAppError(errors.ErrInvalidStatusTransition,
				"cannot change booking from "+string(booking.Status)+" to "+string(next), nil)
		}

		updated, err = tx.UpdateBookingStatus(ctx, bookingID, next)
		if err != nil {
			return err
		}
		if next == entity.BookingStatusCancelled {
			return tx.AdjustSlotBookings(ctx, booking.AvailabilityID, -1)
		}
		return nil
	})
	if err != nil {
		return nil, errors.AsAppError(err, errors.ErrUpdateFailed, "failed to update booking")
	}

	logger.Info("BookingService:Transition:Updated", "booking_id", bookingID, "status", next)

	response := mapper.ToBookingResponse(updated)
	s.afterChange(ctx, updated, response, string(next), next == entity.BookingStatusCancelled)
	return response, nil
}

// afterChange runs the post-commit side effects. None of them can fail the
// request.
func (s *BookingService) afterChange(ctx context.Context, booking *entity.Booking, response *dto.BookingResponse, action string, capacityChanged bool) {
	s.emitter.Emit(ctx, events.BookingUpdate, BookingUpdatePayload{Action: action, Booking: response}, booking.UserID, booking.MentorID)

	if capacityChanged {
		s.emitter.Emit(ctx, events.MentorAvailabilityChanged, slotChangedPayload{
			MentorID: booking.MentorID,
			SlotID:   booking.AvailabilityID,
			Action:   "booking-" + action,
		})
		if s.slots != nil {
			s.slots.Invalidate(ctx, booking.MentorID)
		}
	}

	s.enqueueCalendarFile(ctx, booking.ID)
}

func (s *BookingService) enqueueCalendarFile(ctx context.Context, bookingID uuid.UUID) {
	if s.enqueuer == nil {
		return
	}

	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	err := s.enqueuer.Enqueue(enqueueCtx, constants.TaskBookingCalendarFile, CalendarFileTask{BookingID: bookingID},
		asynq.Queue(constants.QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		logger.Warn("BookingService:EnqueueCalendarFile", "booking_id", bookingID, "error", err)
	}
}

func (s *BookingService) GetCalendarFileURL(ctx context.Context, bookingID uuid.UUID, userID uuid.UUID) (*dto.CalendarFileResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get booking", err)
	}
	if booking == nil || (booking.UserID != userID && booking.MentorID != userID) {
		return nil, errors.NewAppError(errors.ErrNotFound, "booking not found", nil)
	}
	if booking.CalendarFileKey == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "calendar file is not ready yet", nil)
	}

	url, err := s.storage.PresignGet(ctx, *booking.CalendarFileKey)
	if err != nil {
		if stderrors.Is(err, storage.ErrStorageDisabled) {
			return nil, errors.NewAppError(errors.ErrNotFound, "calendar files are not available", err)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to sign calendar file url", err)
	}

	return &dto.CalendarFileResponse{URL: url, ExpiresAt: s.now().Add(s.presignTTL)}, nil
}

// GenerateCalendarFile renders the booking's calendar file and stores it.
// A missing booking or disabled storage is not an error.
func (s *BookingService) GenerateCalendarFile(ctx context.Context, bookingID uuid.UUID) *errors.AppError {
	detail, err := s.repo.GetBookingDetail(ctx, bookingID)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "failed to get booking", err)
	}
	if detail == nil {
		logger.Warn("BookingService:GenerateCalendarFile:NotFound", "booking_id", bookingID)
		return nil
	}

	key := CalendarFileKey(&detail.Booking)
	body := RenderCalendar(detail, s.now())
	if err := s.storage.Put(ctx, key, body, calendarContentType); err != nil {
		if stderrors.Is(err, storage.ErrStorageDisabled) {
			logger.Debug("BookingService:GenerateCalendarFile:StorageDisabled", "booking_id", bookingID)
			return nil
		}
		return errors.NewAppError(errors.ErrCreateFailed, "failed to upload calendar file", err)
	}

	if err := s.repo.SetCalendarFileKey(ctx, bookingID, key); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to save calendar file key", err)
	}

	logger.Info("BookingService:GenerateCalendarFile:Stored", "booking_id", bookingID, "key", key)
	return nil
}
