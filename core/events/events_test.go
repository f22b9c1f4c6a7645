package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"nuon-api/core/constants"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	taskType string
	payload  any
	opts     []asynq.Option
	err      error
	panics   bool
}

func (r *recordingEnqueuer) Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	if r.panics {
		panic("redis gone")
	}
	r.taskType = taskType
	r.payload = payload
	r.opts = opts
	return r.err
}

func TestQueueEmitter_EnqueuesEnvelope(t *testing.T) {
	enq := &recordingEnqueuer{}
	user := uuid.New()

	NewQueueEmitter(enq).Emit(context.Background(), BookingUpdate, map[string]string{"status": "pending"}, user)

	assert.Equal(t, constants.TaskEventEmit, enq.taskType)
	env, ok := enq.payload.(*Envelope)
	require.True(t, ok)
	assert.Equal(t, BookingUpdate, env.Event)
	assert.Equal(t, []uuid.UUID{user}, env.UserIDs)
	assert.JSONEq(t, `{"status":"pending"}`, string(env.Payload))

	var queueName string
	for _, o := range enq.opts {
		if o.Type() == asynq.QueueOpt {
			queueName = o.Value().(string)
		}
	}
	assert.Equal(t, constants.QueueEvents, queueName)
}

func TestQueueEmitter_SwallowsFailures(t *testing.T) {
	assert.NotPanics(t, func() {
		NewQueueEmitter(&recordingEnqueuer{err: errors.New("down")}).Emit(context.Background(), NewAvailability, nil)
	})
	assert.NotPanics(t, func() {
		NewQueueEmitter(&recordingEnqueuer{panics: true}).Emit(context.Background(), NewAvailability, nil)
	})
	assert.NotPanics(t, func() {
		NewQueueEmitter(&recordingEnqueuer{}).Emit(context.Background(), NewAvailability, make(chan int))
	})
}

func TestEnvelope_BroadcastOmitsUserIDs(t *testing.T) {
	env, err := NewEnvelope(MentorAvailabilityChanged, map[string]int{"n": 1})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "user_ids")
}
