package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/metrics"
	"go.uber.org/zap"
)

// OrderRepository is the interface that wraps methods for course_orders table data access
type OrderRepository interface {
	// Method Create inserts a pending order, models.ErrAlreadyExists is returned when the email already ordered the course.
	Create(ctx context.Context, order *models.Order) error
	ExistsBySenderAndCourse(ctx context.Context, sender string, courseID int) (bool, error)
	// Method GetByID retrieves an order with its course name or models.ErrNotFound.
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetByUser(ctx context.Context, userID int) ([]models.Order, error)
	GetPending(ctx context.Context) ([]models.Order, error)
	HasActiveOrder(ctx context.Context, userID, courseID int) (bool, error)
	Activate(ctx context.Context, id int) error
	SetUser(ctx context.Context, orderID, userID int) error
	AssignBySender(ctx context.Context, sender string, userID int) (int, error)
}

// OrderedContentRepository is the interface that wraps methods for the order-scoped course copy
type OrderedContentRepository interface {
	// Method Snapshot copies the active chapters, videos and materials of the course into the order.
	//
	// Rows already copied are skipped, so the call can be repeated to finish a partial copy.
	// It returns the number of newly copied rows.
	Snapshot(ctx context.Context, orderID, courseID int, accessible bool) (int, error)
	// Method GrantAccess flips every accessibility flag of the order to true.
	GrantAccess(ctx context.Context, orderID int) error
	GetChapters(ctx context.Context, orderID int) ([]models.OrderedChapter, error)
	GetVideos(ctx context.Context, orderID int) ([]models.OrderedVideo, error)
	GetMaterials(ctx context.Context, orderID int) ([]models.OrderedMaterial, error)
	// Method GetVideoOwner returns the order and chapter of an ordered video or models.ErrNotFound.
	GetVideoOwner(ctx context.Context, videoID int) (*models.OrderedVideoOwner, error)
}

// CreateOrderInput carries an order form with the context it was submitted in
type CreateOrderInput struct {
	CourseID int
	// UserID is set when the buyer is signed in
	UserID *int
	// CookiePromoCode is the code remembered from a referral link, used when the form has none
	CookiePromoCode string
	Request         models.CreateOrderRequest
}

type orderService struct {
	orderRepo       OrderRepository
	contentRepo     OrderedContentRepository
	courseRepo      CourseRepository
	userRepo        UserRepository
	referralRepo    ReferralRepository
	notifier        Notifier
	metrics         *metrics.Metrics
	logger          *zap.Logger
	adminEmail      string
	siteURL         string
	defaultDiscount float64
}

// OrderServiceConfig holds the platform settings used by the order service
type OrderServiceConfig struct {
	AdminEmail      string
	SiteURL         string
	DefaultDiscount float64
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo OrderRepository,
	contentRepo OrderedContentRepository,
	courseRepo CourseRepository,
	userRepo UserRepository,
	referralRepo ReferralRepository,
	notifier Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg OrderServiceConfig,
) *orderService {
	return &orderService{
		orderRepo:       orderRepo,
		contentRepo:     contentRepo,
		courseRepo:      courseRepo,
		userRepo:        userRepo,
		referralRepo:    referralRepo,
		notifier:        notifier,
		metrics:         m,
		logger:          logger,
		adminEmail:      cfg.AdminEmail,
		siteURL:         strings.TrimRight(cfg.SiteURL, "/"),
		defaultDiscount: cfg.DefaultDiscount,
	}
}

// Create places a pending order and snapshots the course content into it.
//
// Referral attribution, the snapshot and the admin email run after the order row exists.
// Their failures are logged and do not fail the order: a partial snapshot is finished by Resnapshot.
func (s *orderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	req := in.Request
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.PromoCode = normalizePromoCode(req.PromoCode)
	if req.PromoCode == "" {
		req.PromoCode = normalizePromoCode(in.CookiePromoCode)
	}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	exists, err := s.orderRepo.ExistsBySenderAndCourse(ctx, req.Email, course.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: you have already ordered this course", models.ErrAlreadyExists)
	}

	var referrer *models.Referral
	var discount float64
	if req.PromoCode != "" {
		referrer, err = s.referralRepo.GetActiveByPromoCode(ctx, req.PromoCode)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid promo code", models.ErrValidation)
		}
		if err != nil {
			return nil, err
		}
		if discount, err = activeDiscount(ctx, s.referralRepo, s.defaultDiscount); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		UserID:     in.UserID,
		CourseID:   course.ID,
		CourseName: course.Name,
		Sender:     req.Email,
		Notes:      orderNotes(&req, referrer, discount),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.OrderCreated()

	s.attributeReferral(ctx, &req, in.UserID != nil, referrer)

	copied, err := s.contentRepo.Snapshot(ctx, order.ID, course.ID, false)
	if err != nil {
		s.logger.Error("course snapshot is incomplete",
			zap.Int("orderID", order.ID), zap.Int("copied", copied), zap.Error(err))
	}

	s.notifier.Send(ctx, orderCreatedEmail(s.adminEmail, order, course))

	return order, nil
}

// attributeReferral records who invited the buyer.
//
// A referred guest gets a participant row pointing to the referrer unless one exists.
// A signed-in buyer always gets a participant row, and the referrer is updated when present.
func (s *orderService) attributeReferral(ctx context.Context, req *models.CreateOrderRequest, authenticated bool, referrer *models.Referral) {
	if referrer == nil && !authenticated {
		return
	}

	existing, err := s.referralRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("failed to look up buyer referral", zap.String("email", req.Email), zap.Error(err))
		return
	}

	if existing != nil {
		if authenticated && referrer != nil && referrer.ID != existing.ID {
			if err := s.referralRepo.SetReferrer(ctx, existing.ID, referrer); err != nil {
				s.logger.Warn("failed to update referrer", zap.Int("referralID", existing.ID), zap.Error(err))
			}
		}
		return
	}

	ref := &models.Referral{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		IsActive:  true,
	}
	if referrer != nil {
		ref.ReferredByID = &referrer.ID
		ref.ReferredByName = referrer.FullName()
		ref.ReferredByEmail = referrer.Email
	}
	if err := createReferral(ctx, s.referralRepo, s.siteURL, ref); err != nil {
		s.logger.Warn("failed to create buyer referral", zap.String("email", req.Email), zap.Error(err))
	}
}

func orderNotes(req *models.CreateOrderRequest, referrer *models.Referral, discount float64) string {
	notes := fmt.Sprintf("Name: %s %s, Phone: %s", req.FirstName, req.LastName, req.Phone)
	if referrer != nil {
		notes += fmt.Sprintf(", Promo code: %s, Discount: %g%%", req.PromoCode, discount)
	}
	return notes
}

// Activate opens an order after payment was confirmed.
// Repeating it repeats the same updates.
func (s *orderService) Activate(ctx context.Context, orderID int) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Activate(ctx, order.ID); err != nil {
		return nil, err
	}
	order.IsActive = true

	if err := s.contentRepo.GrantAccess(ctx, order.ID); err != nil {
		return nil, err
	}

	recipient := order.Sender
	user, err := s.LinkOrderUser(ctx, order)
	if err != nil {
		s.logger.Warn("failed to link order to a user", zap.Int("orderID", order.ID), zap.Error(err))
	} else if user != nil {
		recipient = user.Email
	}

	s.notifier.Send(ctx, orderActivatedEmail(recipient, order))

	return order, nil
}

// LinkOrderUser returns the account owning the order.
// An order without a user is assigned to the account registered with the sender email, if any.
func (s *orderService) LinkOrderUser(ctx context.Context, order *models.Order) (*models.User, error) {
	if order.UserID != nil {
		return s.userRepo.GetByID(ctx, *order.UserID)
	}

	user, err := s.userRepo.GetByEmail(ctx, order.Sender)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SetUser(ctx, order.ID, user.ID); err != nil {
		return nil, err
	}
	order.UserID = &user.ID

	return user, nil
}

// Resnapshot copies course content missing from the order.
// New rows inherit the accessibility of the order.
func (s *orderService) Resnapshot(ctx context.Context, orderID int) (int, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}

	copied, err := s.contentRepo.Snapshot(ctx, order.ID, order.CourseID, order.IsActive)
	if err != nil {
		return copied, err
	}

	s.logger.Info("order resnapshot finished", zap.Int("orderID", order.ID), zap.Int("copied", copied))
	return copied, nil
}

// ListMine returns the orders of a user
func (s *orderService) ListMine(ctx context.Context, userID int) ([]models.Order, error) {
	return s.orderRepo.GetByUser(ctx, userID)
}

// ListPending returns the orders waiting for activation
func (s *orderService) ListPending(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetPending(ctx)
}
