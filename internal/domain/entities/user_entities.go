package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile is the user record this workflow partially owns: kyc_status is a
// projection of the latest KYC request, balance is mutated only through the
// atomic adjustment primitive.
type Profile struct {
	UserID             uuid.UUID       `json:"user_id" db:"user_id"`
	Email              string          `json:"email" db:"email"`
	IsAdmin            bool            `json:"is_admin" db:"is_admin"`
	KYCStatus          KYCStatus       `json:"kyc_status" db:"kyc_status"`
	KYCRequestedAt     *time.Time      `json:"kyc_requested_at,omitempty" db:"kyc_requested_at"`
	KYCRejectionReason *string         `json:"kyc_rejection_reason,omitempty" db:"kyc_rejection_reason"`
	Balance            decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// AdminIdentity is a caller that has passed the privileged action gate.
type AdminIdentity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}
