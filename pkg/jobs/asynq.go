package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqQueue publishes tasks to Redis for cmd/notification-worker to consume.
type AsynqQueue struct {
	client  *asynq.Client
	queue   string
	timeout time.Duration
}

// NewAsynqQueue wraps an asynq client. Tasks go to the named asynq queue.
func NewAsynqQueue(client *asynq.Client, queue string, timeout time.Duration) *AsynqQueue {
	if queue == "" {
		queue = "default"
	}
	return &AsynqQueue{client: client, queue: queue, timeout: timeout}
}

// Enqueue publishes task at most once: MaxRetry(0) keeps a failed fan-out from resending.
func (q *AsynqQueue) Enqueue(ctx context.Context, task Task) error {
	opts := []asynq.Option{asynq.MaxRetry(0), asynq.Queue(q.queue)}
	if task.ID != "" {
		opts = append(opts, asynq.TaskID(task.ID))
	}
	if q.timeout > 0 {
		opts = append(opts, asynq.Timeout(q.timeout))
	}

	if _, err := q.client.EnqueueContext(ctx, asynq.NewTask(task.Type, task.Payload), opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (q *AsynqQueue) Close() error {
	return q.client.Close()
}

// AsynqHandler adapts a Handler to asynq's handler signature.
func AsynqHandler(h Handler) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		id, _ := asynq.GetTaskID(ctx)
		retried, _ := asynq.GetRetryCount(ctx)
		return h(ctx, Task{ID: id, Type: t.Type(), Payload: t.Payload(), Attempt: retried})
	}
}

// NewAsynqServer builds a worker server with concurrency slots on the given queue.
func NewAsynqServer(opt asynq.RedisClientOpt, queue string, concurrency int, logger *zap.Logger) *asynq.Server {
	if queue == "" {
		queue = "default"
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      &asynqLogger{sugar: logger.Sugar()},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("asynq task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
}

type asynqLogger struct {
	sugar *zap.SugaredLogger
}

func (l *asynqLogger) Debug(args ...interface{}) { l.sugar.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.sugar.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.sugar.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.sugar.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.sugar.Fatal(args...) }
