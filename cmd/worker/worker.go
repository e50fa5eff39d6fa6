package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/internal/notification"
	"github.com/profactive/backend/libs/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds one run of a periodic job
const jobTimeout = 5 * time.Minute

// EmailSender delivers one email
type EmailSender interface {
	// SendEmail sends the email or returns the SMTP error
	SendEmail(email models.Email) error
}

// MaintenanceJobs are the periodic jobs of the worker
type MaintenanceJobs interface {
	// SendPendingOrdersDigest emails the administrator the orders waiting for activation
	SendPendingOrdersDigest(ctx context.Context) (int, error)
	// CleanExpiredTokens removes refresh tokens past their lifetime
	CleanExpiredTokens(ctx context.Context) (int, error)
}

// Worker delivers queued emails and runs periodic jobs
type Worker struct {
	sender  EmailSender
	jobs    MaintenanceJobs
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewWorker creates a new worker instance
func NewWorker(sender EmailSender, jobs MaintenanceJobs, m *metrics.Metrics, logger *zap.Logger) *Worker {
	return &Worker{
		sender:  sender,
		jobs:    jobs,
		metrics: m,
		logger:  logger,
	}
}

// HandleEmailTask sends the email carried by an email:send task.
func (w *Worker) HandleEmailTask(ctx context.Context, t *asynq.Task) error {
	email, err := notification.ParseEmailTask(t)
	if err != nil {
		w.metrics.Email("send_failed")
		w.logger.Error("dropping malformed email task", zap.Error(err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if err := w.sender.SendEmail(email); err != nil {
		w.metrics.Email("send_failed")
		w.logger.Error("failed to send email",
			zap.String("to", email.To), zap.String("subject", email.Subject), zap.Error(err))
		return err
	}

	w.metrics.Email("sent")
	w.logger.Info("email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
	return nil
}

// ScheduleJobs registers the periodic jobs on c
func (w *Worker) ScheduleJobs(c *cron.Cron, digestSpec, cleanupSpec string) error {
	if _, err := c.AddFunc(digestSpec, w.runDigest); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", digestSpec, err)
	}
	if _, err := c.AddFunc(cleanupSpec, w.runTokenCleanup); err != nil {
		return fmt.Errorf("invalid token cleanup schedule %q: %w", cleanupSpec, err)
	}
	return nil
}

func (w *Worker) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := w.jobs.SendPendingOrdersDigest(ctx); err != nil {
		w.logger.Error("pending orders digest failed", zap.Error(err))
	}
}

func (w *Worker) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := w.jobs.CleanExpiredTokens(ctx); err != nil {
		w.logger.Error("expired token cleanup failed", zap.Error(err))
	}
}
