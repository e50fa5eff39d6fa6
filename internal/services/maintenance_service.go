package services

import (
	"context"
	"time"

	"github.com/profactive/backend/internal/models"
	"go.uber.org/zap"
)

// PendingOrdersReader lists orders waiting for activation
type PendingOrdersReader interface {
	GetPending(ctx context.Context) ([]models.Order, error)
}

// ExpiredTokenCleaner removes refresh tokens created before a moment
type ExpiredTokenCleaner interface {
	DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error)
}

// maintenanceService runs the periodic jobs of the worker
type maintenanceService struct {
	orders     PendingOrdersReader
	tokens     ExpiredTokenCleaner
	notifier   Notifier
	adminEmail string
	tokenTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(orders PendingOrdersReader, tokens ExpiredTokenCleaner, notifier Notifier,
	adminEmail string, tokenTTL time.Duration, logger *zap.Logger) *maintenanceService {
	return &maintenanceService{
		orders:     orders,
		tokens:     tokens,
		notifier:   notifier,
		adminEmail: adminEmail,
		tokenTTL:   tokenTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// SendPendingOrdersDigest emails the administrator the list of orders waiting for activation.
// Nothing is sent when there are none.
func (s *maintenanceService) SendPendingOrdersDigest(ctx context.Context) (int, error) {
	orders, err := s.orders.GetPending(ctx)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	s.notifier.Send(ctx, pendingOrdersDigestEmail(s.adminEmail, orders))
	s.logger.Info("pending orders digest sent", zap.Int("orders", len(orders)))

	return len(orders), nil
}

// CleanExpiredTokens deletes refresh tokens older than their lifetime
func (s *maintenanceService) CleanExpiredTokens(ctx context.Context) (int, error) {
	deleted, err := s.tokens.DeleteExpiredTokens(ctx, s.now().Add(-s.tokenTTL))
	if err != nil {
		return 0, err
	}

	s.logger.Info("expired refresh tokens deleted", zap.Int("deleted", deleted))
	return deleted, nil
}
