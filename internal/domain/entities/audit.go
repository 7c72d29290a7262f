package entities

import (
	"time"

	"github.com/google/uuid"
)

// AdminActionType tags an audit record with the privileged operation it
// documents.
type AdminActionType string

const (
	AdminActionKYCReview            AdminActionType = "kyc_review"
	AdminActionUserImpersonation    AdminActionType = "user_impersonation"
	AdminActionSimulateDeposit      AdminActionType = "simulate_deposit"
	AdminActionSimulateWithdraw     AdminActionType = "simulate_withdraw"
	AdminActionSimulateTransaction  AdminActionType = "simulate_transaction"
	AdminActionSimulateNotification AdminActionType = "simulate_notification"
	AdminActionOrderCreated         AdminActionType = "order_created"
)

// AdminAction is an append-only audit record of a privileged mutation.
// Rows are never updated or deleted once written. NewValue is an opaque
// snapshot kept for forensic review; the service never parses it back.
type AdminAction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	AdminID      uuid.UUID       `json:"admin_id" db:"admin_id"`
	ActionType   AdminActionType `json:"action_type" db:"action_type"`
	TargetUserID uuid.UUID       `json:"target_user_id" db:"target_user_id"`
	TargetTable  string          `json:"target_table" db:"target_table"`
	NewValue     JSONMap         `json:"new_value,omitempty" db:"new_value"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
