package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nuon-api/core/config"
	"nuon-api/core/constants"
	"nuon-api/core/logger"

	"github.com/hibiken/asynq"
)

// Enqueuer is the producer side used by services.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error
}

type Client struct {
	client *asynq.Client
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

func (c *Client) Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: encode %s: %w", taskType, err)
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), opts...)
	if err != nil {
		return fmt.Errorf("queue: enqueue %s: %w", taskType, err)
	}

	logger.Debug("Queue:Enqueue", "type", taskType, "id", info.ID, "queue", info.Queue)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Worker runs the asynq server. Handlers are registered on Mux before Start.
type Worker struct {
	server *asynq.Server
	Mux    *asynq.ServeMux
}

func NewWorker(cfg config.RedisConfig) *Worker {
	server := asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			constants.QueueEvents:  6,
			constants.QueueDefault: 4,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:Worker:TaskFailed", "type", task.Type(), "error", err)
		}),
		ShutdownTimeout: 10 * time.Second,
	})
	return &Worker{server: server, Mux: asynq.NewServeMux()}
}

func (w *Worker) Start() error {
	return w.server.Start(w.Mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// Decode unmarshals a task payload into dest.
func Decode(task *asynq.Task, dest any) error {
	if err := json.Unmarshal(task.Payload(), dest); err != nil {
		return fmt.Errorf("queue: decode %s: %w: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}
