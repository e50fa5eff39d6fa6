package main

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/internal/notification"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []models.Email
	err  error
}

func (f *fakeSender) SendEmail(email models.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

type fakeJobs struct {
	digests  int
	cleanups int
	err      error
}

func (f *fakeJobs) SendPendingOrdersDigest(ctx context.Context) (int, error) {
	f.digests++
	return 2, f.err
}

func (f *fakeJobs) CleanExpiredTokens(ctx context.Context) (int, error) {
	f.cleanups++
	return 5, f.err
}

func TestWorker_HandleEmailTask(t *testing.T) {
	email := models.Email{To: "admin@profactive.kz", Subject: "New order", Body: "Order #1"}
	task, err := notification.NewEmailTask(email)
	require.NoError(t, err)

	tests := []struct {
		name      string
		task      *asynq.Task
		sendErr   error
		wantErr   bool
		skipRetry bool
		wantSent  int
	}{
		{name: "delivered", task: task, wantSent: 1},
		{name: "smtp failure fails the task", task: task, sendErr: errors.New("535 auth failed"), wantErr: true},
		{name: "malformed payload", task: asynq.NewTask(notification.TypeEmailSend, []byte("{")), wantErr: true, skipRetry: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.sendErr}
			w := NewWorker(sender, &fakeJobs{}, nil, zap.NewNop())

			err := w.HandleEmailTask(context.Background(), tt.task)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, sender.sent, tt.wantSent)
		})
	}
}

func TestWorker_ScheduleJobs(t *testing.T) {
	t.Run("valid schedules", func(t *testing.T) {
		c := cron.New()
		w := NewWorker(&fakeSender{}, &fakeJobs{}, nil, zap.NewNop())

		require.NoError(t, w.ScheduleJobs(c, "0 9 * * *", "@daily"))
		assert.Len(t, c.Entries(), 2)
	})

	t.Run("invalid digest schedule", func(t *testing.T) {
		w := NewWorker(&fakeSender{}, &fakeJobs{}, nil, zap.NewNop())
		err := w.ScheduleJobs(cron.New(), "every morning", "@daily")
		assert.ErrorContains(t, err, "invalid digest schedule")
	})
}

func TestWorker_Jobs(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("db down")}
	w := NewWorker(&fakeSender{}, jobs, nil, zap.NewNop())

	assert.NotPanics(t, w.runDigest)
	assert.NotPanics(t, w.runTokenCleanup)
	assert.Equal(t, 1, jobs.digests)
	assert.Equal(t, 1, jobs.cleanups)
}
