package events

import (
	"context"
	"encoding/json"
	"time"

	"nuon-api/core/constants"
	"nuon-api/core/logger"
	"nuon-api/core/queue"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	NewAvailability           = "new-availability"
	MentorAvailabilityChanged = "mentor-availability-changed"
	BookingUpdate             = "booking-update"
)

// Envelope is the event as carried on the queue and the realtime channel.
// An empty UserIDs list means broadcast.
type Envelope struct {
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	UserIDs   []uuid.UUID     `json:"user_ids,omitempty"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// Emitter delivers events best-effort. Emit never returns an error and never
// panics into the caller; there is no delivery or ordering guarantee.
type Emitter interface {
	Emit(ctx context.Context, event string, payload any, userIDs ...uuid.UUID)
}

type QueueEmitter struct {
	enqueuer queue.Enqueuer
}

func NewQueueEmitter(enqueuer queue.Enqueuer) *QueueEmitter {
	return &QueueEmitter{enqueuer: enqueuer}
}

func (e *QueueEmitter) Emit(ctx context.Context, event string, payload any, userIDs ...uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Events:Emit:Panic", "event", event, "panic", r)
		}
	}()

	envelope, err := NewEnvelope(event, payload, userIDs...)
	if err != nil {
		logger.Error("Events:Emit:Encode", "event", event, "error", err)
		return
	}

	// The request context may already be close to its deadline.
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	err = e.enqueuer.Enqueue(enqueueCtx, constants.TaskEventEmit, envelope,
		asynq.Queue(constants.QueueEvents),
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Second),
	)
	if err != nil {
		logger.Warn("Events:Emit:Enqueue", "event", event, "error", err)
	}
}

func NewEnvelope(event string, payload any, userIDs ...uuid.UUID) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Event:     event,
		Payload:   raw,
		UserIDs:   userIDs,
		EmittedAt: time.Now().UTC(),
	}, nil
}

type NoopEmitter struct{}

func (NoopEmitter) Emit(ctx context.Context, event string, payload any, userIDs ...uuid.UUID) {
	logger.Debug("Events:Emit:Noop", "event", event)
}
