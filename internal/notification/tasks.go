// Package notification queues notification emails and delivers them over SMTP
package notification

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/profactive/backend/internal/models"
)

const (
	// TypeEmailSend is the asynq task type of a notification email
	TypeEmailSend = "email:send"
	// QueueEmails is the asynq queue notification emails are put on
	QueueEmails = "emails"
	// maxRetry is zero: an email the SMTP server refused is logged and dropped
	maxRetry = 0
)

// NewEmailTask wraps an email into an asynq task
func NewEmailTask(email models.Email) (*asynq.Task, error) {
	if strings.TrimSpace(email.To) == "" {
		return nil, fmt.Errorf("email recipient is empty")
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}

	return asynq.NewTask(TypeEmailSend, payload, emailTaskOptions()...), nil
}

func emailTaskOptions() []asynq.Option {
	return []asynq.Option{asynq.Queue(QueueEmails), asynq.MaxRetry(maxRetry)}
}

// ParseEmailTask reads the email carried by a task
func ParseEmailTask(task *asynq.Task) (models.Email, error) {
	var email models.Email
	if err := json.Unmarshal(task.Payload(), &email); err != nil {
		return models.Email{}, fmt.Errorf("failed to decode email payload: %w", err)
	}
	if strings.TrimSpace(email.To) == "" {
		return models.Email{}, fmt.Errorf("email recipient is empty")
	}
	return email, nil
}
