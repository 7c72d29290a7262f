package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// UserRepository is the Postgres implementation of repositories.UserRepository.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	var profile entities.Profile
	query := `SELECT * FROM profiles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to load profile", err)
	}
	return &profile, nil
}

func (r *UserRepository) SetKYCStatus(ctx context.Context, userID uuid.UUID, update repositories.ProfileKYCUpdate) error {
	query := `
		UPDATE profiles
		SET kyc_status = $2,
		    kyc_requested_at = COALESCE($3, kyc_requested_at),
		    kyc_rejection_reason = $4,
		    updated_at = NOW()
		WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, update.Status, update.RequestedAt, update.RejectionReason)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to update profile kyc status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to read update result", err)
	}
	if rows == 0 {
		return apperrors.New(apperrors.KindNotFound, "user not found")
	}
	return nil
}

// AdjustBalance applies a signed delta in a single statement. The store's
// row-level atomicity is what makes concurrent adjustments safe; there is no
// read-modify-write cycle here.
func (r *UserRepository) AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal, reason string) (decimal.Decimal, error) {
	query := `
		UPDATE profiles
		SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING balance`
	var balance decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, userID, delta).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperrors.New(apperrors.KindNotFound, "user not found")
		}
		return decimal.Zero, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to adjust balance", err)
	}
	return balance, nil
}
