package notification

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/metrics"
	"go.uber.org/zap"
)

// Enqueuer puts tasks on the queue. *asynq.Client implements it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands emails to the worker through asynq
type QueueNotifier struct {
	client  Enqueuer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewQueueNotifier creates a notifier backed by the asynq client
func NewQueueNotifier(client Enqueuer, m *metrics.Metrics, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{
		client:  client,
		metrics: m,
		logger:  logger,
	}
}

// Send enqueues the email. Failures are logged and never reach the caller.
func (n *QueueNotifier) Send(ctx context.Context, email models.Email) {
	task, err := NewEmailTask(email)
	if err != nil {
		n.metrics.Email("enqueue_failed")
		n.logger.Warn("failed to build email task", zap.String("subject", email.Subject), zap.Error(err))
		return
	}

	// The email must be queued even when the request that triggered it is cancelled
	info, err := n.client.EnqueueContext(context.WithoutCancel(ctx), task)
	if err != nil {
		n.metrics.Email("enqueue_failed")
		n.logger.Error("failed to enqueue email",
			zap.String("to", email.To), zap.String("subject", email.Subject), zap.Error(err))
		return
	}

	n.metrics.Email("queued")
	n.logger.Debug("email queued", zap.String("taskID", info.ID), zap.String("to", email.To))
}
