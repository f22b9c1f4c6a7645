package worker

import (
	"context"
	"testing"

	"nuon-api/core/constants"
	"nuon-api/core/errors"
	"nuon-api/modules/booking/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	service.BookingServiceInterface
	generated []uuid.UUID
	err       *errors.AppError
}

func (s *stubService) GenerateCalendarFile(ctx context.Context, bookingID uuid.UUID) *errors.AppError {
	s.generated = append(s.generated, bookingID)
	return s.err
}

func TestHandleCalendarFile(t *testing.T) {
	svc := &stubService{}
	w := NewCalendarWorker(svc)
	id := uuid.New()

	task := asynq.NewTask(constants.TaskBookingCalendarFile, []byte(`{"booking_id":"`+id.String()+`"}`))
	require.NoError(t, w.HandleCalendarFile(context.Background(), task))
	assert.Equal(t, []uuid.UUID{id}, svc.generated)
}

func TestHandleCalendarFile_Errors(t *testing.T) {
	svc := &stubService{err: errors.NewAppError(errors.ErrCreateFailed, "failed to upload calendar file", nil)}
	w := NewCalendarWorker(svc)

	err := w.HandleCalendarFile(context.Background(), asynq.NewTask(constants.TaskBookingCalendarFile, []byte(`{"booking_id":"`+uuid.NewString()+`"}`)))
	assert.Error(t, err)

	err = w.HandleCalendarFile(context.Background(), asynq.NewTask(constants.TaskBookingCalendarFile, []byte(`{`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRegister(t *testing.T) {
	mux := asynq.NewServeMux()
	NewCalendarWorker(&stubService{}).Register(mux)

	_, pattern := mux.Handler(asynq.NewTask(constants.TaskBookingCalendarFile, nil))
	assert.Equal(t, constants.TaskBookingCalendarFile, pattern)
}
