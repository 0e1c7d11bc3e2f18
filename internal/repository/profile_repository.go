package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glowbook/auth-service/internal/domain"
	"github.com/google/uuid"
)

// profileRepository implements ProfileRepository interface
type profileRepository struct {
	db DBTX
}

// NewProfileRepository creates a new customer profile repository
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

// CreateCustomerProfile creates a customer profile row
func (r *profileRepository) CreateCustomerProfile(ctx context.Context, profile *domain.CustomerProfile) error {
	query := `
		INSERT INTO customer_profiles (id, user_id, loyalty_tier, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.LoyaltyTier == "" {
		profile.LoyaltyTier = domain.LoyaltyTierBronze
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.LoyaltyTier,
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer profile: %w", err)
	}

	return nil
}
