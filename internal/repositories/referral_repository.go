package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/profactive/backend/internal/models"
)

type referralRepository struct {
	db *sql.DB
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *sql.DB) *referralRepository {
	return &referralRepository{
		db: db,
	}
}

const referralSelect = `
	SELECT id, first_name, last_name, email, phone, promo_code, referral_link,
		referred_by_id, referred_by_name, referred_by_email, is_active, created_at
	FROM referral_requests
`

func scanReferral(row interface{ Scan(...any) error }) (*models.Referral, error) {
	var ref models.Referral
	var referredByID sql.NullInt64
	var referredByName, referredByEmail sql.NullString
	err := row.Scan(
		&ref.ID,
		&ref.FirstName,
		&ref.LastName,
		&ref.Email,
		&ref.Phone,
		&ref.PromoCode,
		&ref.ReferralLink,
		&referredByID,
		&referredByName,
		&referredByEmail,
		&ref.IsActive,
		&ref.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	ref.ReferredByID = nullIntPtr(referredByID)
	ref.ReferredByName = referredByName.String
	ref.ReferredByEmail = referredByEmail.String
	return &ref, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts a new referral program participant
func (r *referralRepository) Create(ctx context.Context, ref *models.Referral) error {
	query := `
		INSERT INTO referral_requests (first_name, last_name, email, phone, promo_code, referral_link,
			referred_by_id, referred_by_name, referred_by_email, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		ref.FirstName, ref.LastName, ref.Email, ref.Phone, ref.PromoCode, ref.ReferralLink,
		intPtrArg(ref.ReferredByID), nullString(ref.ReferredByName), nullString(ref.ReferredByEmail), ref.IsActive,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: referral for %s", models.ErrAlreadyExists, ref.Email)
		}
		return fmt.Errorf("failed to create referral: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	ref.ID = int(id)
	return nil
}

// GetByEmail returns the referral of an email
func (r *referralRepository) GetByEmail(ctx context.Context, email string) (*models.Referral, error) {
	ref, err := scanReferral(r.db.QueryRowContext(ctx, referralSelect+" WHERE email = ? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: referral", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral by email: %w", err)
	}

	return ref, nil
}

// GetActiveByPromoCode returns the active referral owning the promo code
func (r *referralRepository) GetActiveByPromoCode(ctx context.Context, code string) (*models.Referral, error) {
	ref, err := scanReferral(r.db.QueryRowContext(ctx, referralSelect+" WHERE promo_code = ? AND is_active = TRUE LIMIT 1", code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: promo code", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral by promo code: %w", err)
	}

	return ref, nil
}

// PromoCodeExists checks whether a promo code is taken
func (r *referralRepository) PromoCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM referral_requests WHERE promo_code = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check promo code existence: %w", err)
	}

	return exists, nil
}

// SetReferrer attributes the referral to the participant who invited it
func (r *referralRepository) SetReferrer(ctx context.Context, id int, referrer *models.Referral) error {
	query := `
		UPDATE referral_requests
		SET referred_by_id = ?, referred_by_name = ?, referred_by_email = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, referrer.ID, referrer.FullName(), referrer.Email, id)
	if err != nil {
		return fmt.Errorf("failed to set referrer: %w", err)
	}

	return requireAffected(result, "referral")
}

// GetActiveDiscount returns the configured referral discount percentage
func (r *referralRepository) GetActiveDiscount(ctx context.Context) (float64, error) {
	query := `SELECT percentage FROM referral_discounts WHERE is_active = TRUE ORDER BY id DESC LIMIT 1`

	var percentage float64
	err := r.db.QueryRowContext(ctx, query).Scan(&percentage)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: referral discount", models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get referral discount: %w", err)
	}

	return percentage, nil
}
