// Package repositories defines the persistence contracts consumed by the
// domain services. Implementations live in internal/infrastructure.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
)

// KYCRequestFilter narrows admin request listings.
type KYCRequestFilter struct {
	UserID *uuid.UUID
	Status *entities.KYCStatus
	Limit  int
	Offset int
}

// KYCRepository persists verification requests and their documents.
type KYCRepository interface {
	CreateRequest(ctx context.Context, req *entities.KYCRequest) error
	// DeleteRequest exists only to roll back a submission whose documents
	// failed to attach. Reviewed requests are never deleted.
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	AttachDocuments(ctx context.Context, docs []*entities.KYCDocument) error
	GetRequest(ctx context.Context, id uuid.UUID) (*entities.KYCRequest, error)
	GetRequestDetail(ctx context.Context, id uuid.UUID) (*entities.KYCRequestDetail, error)
	LatestRequestByUser(ctx context.Context, userID uuid.UUID) (*entities.KYCRequest, error)
	ListRequests(ctx context.Context, filter KYCRequestFilter) ([]*entities.KYCRequest, int64, error)
	UpdateReview(ctx context.Context, id uuid.UUID, status entities.KYCStatus, reviewedBy uuid.UUID, reason *string, reviewedAt time.Time) error
	GetDocument(ctx context.Context, id uuid.UUID) (*entities.KYCDocument, error)
}

// ProfileKYCUpdate carries the profile-side projection of a submission or
// review outcome.
type ProfileKYCUpdate struct {
	Status          entities.KYCStatus
	RequestedAt     *time.Time
	RejectionReason *string
}

// UserRepository reads and mutates the profile fields this workflow owns.
type UserRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
	SetKYCStatus(ctx context.Context, userID uuid.UUID, update ProfileKYCUpdate) error
	// AdjustBalance applies a signed delta in a single statement and returns
	// the resulting balance. Race safety is the store's responsibility.
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal, reason string) (decimal.Decimal, error)
}

// AuditLogFilter narrows audit listings for forensic review.
type AuditLogFilter struct {
	AdminID      *uuid.UUID
	TargetUserID *uuid.UUID
	ActionType   *entities.AdminActionType
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}

// AuditRepository is append-only: there is deliberately no update or delete.
type AuditRepository interface {
	Create(ctx context.Context, action *entities.AdminAction) error
	List(ctx context.Context, filter AuditLogFilter) ([]*entities.AdminAction, error)
	Count(ctx context.Context, filter AuditLogFilter) (int64, error)
}

// TransactionRepository persists synthetic transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
}

// NotificationRepository persists user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
}
