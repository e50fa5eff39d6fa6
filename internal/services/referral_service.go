package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/profactive/backend/internal/models"
	"go.uber.org/zap"
)

const promoCodeAttempts = 10

// ReferralRepository is the interface that wraps methods for referral program data access
type ReferralRepository interface {
	// Method Create inserts a participant, models.ErrAlreadyExists is returned for a known email or promo code.
	Create(ctx context.Context, ref *models.Referral) error
	// Method GetByEmail returns the participant of an email or models.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.Referral, error)
	// Method GetActiveByPromoCode returns the active participant owning the code or models.ErrNotFound.
	GetActiveByPromoCode(ctx context.Context, code string) (*models.Referral, error)
	PromoCodeExists(ctx context.Context, code string) (bool, error)
	SetReferrer(ctx context.Context, id int, referrer *models.Referral) error
	// Method GetActiveDiscount returns the configured discount or models.ErrNotFound.
	GetActiveDiscount(ctx context.Context) (float64, error)
}

type referralService struct {
	referralRepo    ReferralRepository
	notifier        Notifier
	siteURL         string
	defaultDiscount float64
	logger          *zap.Logger
}

// NewReferralService creates a new referral program service
func NewReferralService(referralRepo ReferralRepository, notifier Notifier, siteURL string, defaultDiscount float64, logger *zap.Logger) *referralService {
	return &referralService{
		referralRepo:    referralRepo,
		notifier:        notifier,
		siteURL:         strings.TrimRight(siteURL, "/"),
		defaultDiscount: defaultDiscount,
		logger:          logger,
	}
}

// Join signs a person up for the referral program and emails them their promo code
func (s *referralService) Join(ctx context.Context, req *models.CreateReferralRequest) (*models.Referral, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.referralRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email is already in the referral program", models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	ref := &models.Referral{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		IsActive:  true,
	}
	if err := createReferral(ctx, s.referralRepo, s.siteURL, ref); err != nil {
		return nil, err
	}

	s.notifier.Send(ctx, referralEmail(ref))

	return ref, nil
}

// ResolveCode returns the active participant owning a promo code
func (s *referralService) ResolveCode(ctx context.Context, code string) (*models.Referral, error) {
	code = normalizePromoCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: promo code is required", models.ErrValidation)
	}
	return s.referralRepo.GetActiveByPromoCode(ctx, code)
}

// Discount returns the current referral discount percentage
func (s *referralService) Discount(ctx context.Context) (float64, error) {
	return activeDiscount(ctx, s.referralRepo, s.defaultDiscount)
}

// createReferral assigns a unique promo code and link to ref and stores it
func createReferral(ctx context.Context, repo ReferralRepository, siteURL string, ref *models.Referral) error {
	code, err := generatePromoCode(ctx, repo)
	if err != nil {
		return err
	}

	ref.PromoCode = code
	ref.ReferralLink = fmt.Sprintf("%s/referral/%s/", siteURL, code)

	return repo.Create(ctx, ref)
}

func generatePromoCode(ctx context.Context, repo ReferralRepository) (string, error) {
	for range promoCodeAttempts {
		code, err := randomString(models.PromoCodeLength, models.PromoCodeAlphabet)
		if err != nil {
			return "", err
		}

		exists, err := repo.PromoCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique promo code after %d attempts", promoCodeAttempts)
}

func activeDiscount(ctx context.Context, repo ReferralRepository, fallback float64) (float64, error) {
	discount, err := repo.GetActiveDiscount(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	return discount, nil
}

func normalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
