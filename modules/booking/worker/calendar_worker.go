package worker

import (
	"context"

	"nuon-api/core/constants"
	"nuon-api/core/logger"
	"nuon-api/core/queue"
	"nuon-api/modules/booking/service"

	"github.com/hibiken/asynq"
)

type CalendarWorker struct {
	service service.BookingServiceInterface
}

func NewCalendarWorker(svc service.BookingServiceInterface) *CalendarWorker {
	return &CalendarWorker{service: svc}
}

func (w *CalendarWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(constants.TaskBookingCalendarFile, w.HandleCalendarFile)
}

// HandleCalendarFile renders and uploads the calendar file of one booking.
// Upload failures are retried by the queue.
func (w *CalendarWorker) HandleCalendarFile(ctx context.Context, task *asynq.Task) error {
	var payload service.CalendarFileTask
	if err := queue.Decode(task, &payload); err != nil {
		logger.Error("CalendarWorker:HandleCalendarFile:Decode", "error", err)
		return err
	}

	if appErr := w.service.GenerateCalendarFile(ctx, payload.BookingID); appErr != nil {
		logger.Error("CalendarWorker:HandleCalendarFile:Generate", "booking_id", payload.BookingID, "error", appErr)
		return appErr
	}
	return nil
}
