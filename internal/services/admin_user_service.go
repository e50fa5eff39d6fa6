package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/profactive/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	generatedPasswordLength   = 12
	generatedPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
)

type adminUserService struct {
	userRepo      UserRepository
	orderAssigner OrderAssigner
	notifier      Notifier
	siteURL       string
	logger        *zap.Logger
}

// NewAdminUserService creates a service for accounts managed by administrators
func NewAdminUserService(userRepo UserRepository, orderAssigner OrderAssigner, notifier Notifier, siteURL string, logger *zap.Logger) *adminUserService {
	return &adminUserService{
		userRepo:      userRepo,
		orderAssigner: orderAssigner,
		notifier:      notifier,
		siteURL:       siteURL,
		logger:        logger,
	}
}

// CreateUser creates an account on behalf of a customer and emails the credentials.
// A password is generated when the request has none.
func (s *adminUserService) CreateUser(ctx context.Context, req *models.AdminCreateUserRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email is already registered", models.ErrAlreadyExists)
	}

	password := req.Password
	if password == "" {
		if password, err = generatePassword(); err != nil {
			return nil, err
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == 0 {
		role = models.RoleUser
	}

	user := &models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		PasswordHash: string(passwordHash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	assignOrders(ctx, s.orderAssigner, s.logger, user)
	s.notifier.Send(ctx, credentialsEmail(user, password, s.siteURL))

	return user, nil
}

// generatePassword draws a random password from generatedPasswordAlphabet
func generatePassword() (string, error) {
	return randomString(generatedPasswordLength, generatedPasswordAlphabet)
}

func randomString(length int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
