package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glowbook/auth-service/internal/domain"
	"github.com/google/uuid"
)

// salonRepository implements SalonRepository interface
type salonRepository struct {
	db DBTX
}

// NewSalonRepository creates a new salon repository
func NewSalonRepository(db DBTX) SalonRepository {
	return &salonRepository{db: db}
}

// CreateSalon creates a new salon (tenant) record
func (r *salonRepository) CreateSalon(ctx context.Context, salon *domain.Salon) error {
	query := `
		INSERT INTO salons (id, name, address, city, country, phone, email, website, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if salon.ID == "" {
		salon.ID = uuid.New().String()
	}

	now := time.Now()
	if salon.CreatedAt.IsZero() {
		salon.CreatedAt = now
	}
	if salon.UpdatedAt.IsZero() {
		salon.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		salon.ID,
		salon.Name,
		salon.Address,
		salon.City,
		salon.Country,
		salon.Phone,
		salon.Email,
		salon.Website,
		salon.Description,
		salon.CreatedAt,
		salon.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create salon: %w", err)
	}

	return nil
}

// CreateMember creates a salon membership record
func (r *salonRepository) CreateMember(ctx context.Context, member *domain.SalonMember) error {
	query := `
		INSERT INTO salon_members (id, salon_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.SalonID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create salon member: %w", err)
	}

	return nil
}

// CreateStaff creates a bookable-staff record
func (r *salonRepository) CreateStaff(ctx context.Context, staff *domain.SalonStaff) error {
	query := `
		INSERT INTO salon_staff (id, salon_id, user_id, title, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.SalonID,
		staff.UserID,
		staff.Title,
		staff.IsActive,
		staff.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create salon staff: %w", err)
	}

	return nil
}
