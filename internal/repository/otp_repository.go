package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glowbook/auth-service/internal/domain"
	"github.com/google/uuid"
)

// otpRepository implements OTPRepository interface
type otpRepository struct {
	db DBTX
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db DBTX) OTPRepository {
	return &otpRepository{db: db}
}

// Create creates a new OTP verification record
func (r *otpRepository) Create(ctx context.Context, otp *domain.OTPVerification) error {
	query := `
		INSERT INTO otp_verifications (id, user_id, phone, code, purpose, verified, attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if otp.ID == "" {
		otp.ID = uuid.New().String()
	}

	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		otp.ID,
		nullableID(otp.UserID),
		otp.Phone,
		otp.Code,
		string(otp.Purpose),
		otp.Verified,
		otp.Attempts,
		otp.ExpiresAt,
		otp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create otp record: %w", err)
	}

	return nil
}

// nullableID maps an empty ID to NULL so pre-registration records carry no
// user reference.
func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

// GetLatestActive returns the most recently created unverified, unexpired
// record for (userID, phone, purpose). Older active rows are superseded by
// selection order, so at most one code is usable at a time.
func (r *otpRepository) GetLatestActive(ctx context.Context, userID, phone string, purpose domain.OTPPurpose) (*domain.OTPVerification, error) {
	query := `
		SELECT id, user_id, phone, code, purpose, verified, attempts, expires_at, created_at
		FROM otp_verifications
		WHERE user_id IS NOT DISTINCT FROM $1 AND phone = $2 AND purpose = $3 AND verified = FALSE AND expires_at > $4
		ORDER BY created_at DESC
		LIMIT 1
	`

	otp := &domain.OTPVerification{}
	var ownerID sql.NullString
	var purposeStr string

	err := r.db.QueryRowContext(ctx, query, nullableID(userID), phone, string(purpose), time.Now()).Scan(
		&otp.ID,
		&ownerID,
		&otp.Phone,
		&otp.Code,
		&purposeStr,
		&otp.Verified,
		&otp.Attempts,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active otp record not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get otp record: %w", err)
	}

	otp.UserID = ownerID.String
	otp.Purpose = domain.OTPPurpose(purposeStr)
	return otp, nil
}

// LatestCreatedAt returns the creation time of the newest record for
// (userID, phone, purpose) regardless of verification or expiry state.
func (r *otpRepository) LatestCreatedAt(ctx context.Context, userID, phone string, purpose domain.OTPPurpose) (time.Time, error) {
	query := `
		SELECT created_at
		FROM otp_verifications
		WHERE user_id IS NOT DISTINCT FROM $1 AND phone = $2 AND purpose = $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query, nullableID(userID), phone, string(purpose)).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("otp record not found: %w", ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to get latest otp creation time: %w", err)
	}

	return createdAt, nil
}

// LatestVerified returns the most recent verified, unexpired record for
// (phone, purpose). The code TTL doubles as the window in which the
// verification can be redeemed.
func (r *otpRepository) LatestVerified(ctx context.Context, phone string, purpose domain.OTPPurpose) (*domain.OTPVerification, error) {
	query := `
		SELECT id, user_id, phone, code, purpose, verified, attempts, expires_at, created_at
		FROM otp_verifications
		WHERE phone = $1 AND purpose = $2 AND verified = TRUE AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	otp := &domain.OTPVerification{}
	var ownerID sql.NullString
	var purposeStr string

	err := r.db.QueryRowContext(ctx, query, phone, string(purpose), time.Now()).Scan(
		&otp.ID,
		&ownerID,
		&otp.Phone,
		&otp.Code,
		&purposeStr,
		&otp.Verified,
		&otp.Attempts,
		&otp.ExpiresAt,
		&otp.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verified otp record not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get verified otp record: %w", err)
	}

	otp.UserID = ownerID.String
	otp.Purpose = domain.OTPPurpose(purposeStr)
	return otp, nil
}

// IncrementAttempts increments the attempt counter of a record
func (r *otpRepository) IncrementAttempts(ctx context.Context, id string) error {
	query := `UPDATE otp_verifications SET attempts = attempts + 1 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment otp attempts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("otp record with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

// MarkVerified marks a record as verified
func (r *otpRepository) MarkVerified(ctx context.Context, id string) error {
	query := `UPDATE otp_verifications SET verified = TRUE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("otp record with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteExpired purges expired records for (userID, phone) before a new
// code is issued.
func (r *otpRepository) DeleteExpired(ctx context.Context, userID, phone string) error {
	query := `DELETE FROM otp_verifications WHERE user_id IS NOT DISTINCT FROM $1 AND phone = $2 AND expires_at < $3`

	if _, err := r.db.ExecContext(ctx, query, nullableID(userID), phone, time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired otp records: %w", err)
	}

	return nil
}
