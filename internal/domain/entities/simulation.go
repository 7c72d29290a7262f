package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Simulation operation kinds. Unknown kinds yield per-item failures, not a
// batch error.
const (
	SimOpDeposit     = "deposit"
	SimOpWithdraw    = "withdraw"
	SimOpTransaction = "transaction"
	SimOpNotify      = "notify"
)

// SimulationOperation is one synthetic operation in an admin simulation
// batch. Fields beyond Type are read per-kind; irrelevant fields are ignored.
type SimulationOperation struct {
	Type string `json:"type" validate:"required"`

	// deposit / withdraw / transaction
	Amount   decimal.Decimal `json:"amount,omitempty"`
	Currency string          `json:"currency,omitempty"`
	Reason   string          `json:"reason,omitempty"`

	// transaction
	TransactionType string `json:"transaction_type,omitempty"`
	Description     string `json:"description,omitempty"`
	Reference       string `json:"reference,omitempty"`

	// notify
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// SimulationRequest is the admin batch payload.
type SimulationRequest struct {
	TargetUserID uuid.UUID             `json:"target_user_id" validate:"required"`
	Operations   []SimulationOperation `json:"operations" validate:"required,min=1,dive"`
}

// SimulationResult reports the outcome of one attempted operation.
type SimulationResult struct {
	Op      string `json:"op"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Transaction is a synthetic completed financial record written by the
// simulator.
type Transaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Type        string          `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Currency    string          `json:"currency" db:"currency"`
	Status      string          `json:"status" db:"status"`
	Description string          `json:"description" db:"description"`
	Reference   string          `json:"reference" db:"reference"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Notification is a user-facing notification row. Inserts are best-effort:
// a missing notifications collaborator is a soft failure.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Kind      string    `json:"kind" db:"kind"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ImpersonationGrant is the short-lived credential returned to an admin who
// may act as the target user.
type ImpersonationGrant struct {
	TargetUserID uuid.UUID `json:"target_user_id"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
