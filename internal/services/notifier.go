package services

import (
	"context"

	"github.com/profactive/backend/internal/models"
)

// Notifier delivers notification emails.
// Send is fire-and-forget: implementations log delivery problems instead of returning them.
type Notifier interface {
	Send(ctx context.Context, email models.Email)
}
