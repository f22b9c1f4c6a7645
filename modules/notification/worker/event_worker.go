package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"nuon-api/core/cache"
	"nuon-api/core/constants"
	"nuon-api/core/events"
	"nuon-api/core/logger"
	"nuon-api/core/queue"
	"nuon-api/modules/notification/dto"
	"nuon-api/modules/notification/entity"
	"nuon-api/modules/notification/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// EventWorker relays emitted events to the realtime channel and turns
// booking updates into inbox notifications.
type EventWorker struct {
	cache         cache.Cache
	notifications service.NotificationServiceInterface
}

func NewEventWorker(c cache.Cache, notifications service.NotificationServiceInterface) *EventWorker {
	return &EventWorker{cache: c, notifications: notifications}
}

func (w *EventWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(constants.TaskEventEmit, w.HandleEmit)
}

// HandleEmit never fails the task; events are not retried.
func (w *EventWorker) HandleEmit(ctx context.Context, task *asynq.Task) error {
	var env events.Envelope
	if err := queue.Decode(task, &env); err != nil {
		logger.Error("EventWorker:HandleEmit:Decode", "error", err)
		return nil
	}

	raw, err := json.Marshal(env)
	if err != nil {
		logger.Error("EventWorker:HandleEmit:Encode", "event", env.Event, "error", err)
		return nil
	}
	if err := w.cache.Publish(ctx, constants.RedisChannelRealtimeEvents, raw); err != nil {
		logger.Warn("EventWorker:HandleEmit:Publish", "event", env.Event, "error", err)
	}

	if env.Event == events.BookingUpdate {
		w.notifyBooking(ctx, env)
	}
	return nil
}

type bookingUpdate struct {
	Action  string `json:"action"`
	Booking struct {
		ID             uuid.UUID `json:"id"`
		Reference      string    `json:"reference"`
		Status         string    `json:"status"`
		MentorID       uuid.UUID `json:"mentor_id"`
		AvailabilityID uuid.UUID `json:"availability_id"`
	} `json:"booking"`
}

func (w *EventWorker) notifyBooking(ctx context.Context, env events.Envelope) {
	var update bookingUpdate
	if err := json.Unmarshal(env.Payload, &update); err != nil {
		logger.Warn("EventWorker:NotifyBooking:Decode", "error", err)
		return
	}

	for _, userID := range env.UserIDs {
		title, message := bookingMessage(update.Action, update.Booking.Reference, userID == update.Booking.MentorID)
		appErr := w.notifications.Create(ctx, &dto.CreateNotificationRequest{
			UserID:  userID,
			Title:   title,
			Message: message,
			Type:    entity.TypeBooking,
			Data: map[string]any{
				"booking_id":      update.Booking.ID,
				"availability_id": update.Booking.AvailabilityID,
				"reference":       update.Booking.Reference,
				"status":          update.Booking.Status,
				"action":          update.Action,
			},
		})
		if appErr != nil {
			logger.Warn("EventWorker:NotifyBooking:Create", "user_id", userID, "error", appErr)
		}
	}
}

func bookingMessage(action, reference string, forMentor bool) (string, string) {
	switch action {
	case "created":
		if forMentor {
			return "New booking", fmt.Sprintf("A session was booked on your slot (ref %s).", reference)
		}
		return "Booking received", fmt.Sprintf("Your booking %s is waiting for the mentor to confirm.", reference)
	case "confirmed":
		return "Booking confirmed", fmt.Sprintf("Booking %s has been confirmed.", reference)
	case "cancelled":
		return "Booking cancelled", fmt.Sprintf("Booking %s has been cancelled.", reference)
	case "completed":
		return "Session completed", fmt.Sprintf("Booking %s is marked as completed.", reference)
	default:
		return "Booking updated", fmt.Sprintf("Booking %s was updated.", reference)
	}
}
