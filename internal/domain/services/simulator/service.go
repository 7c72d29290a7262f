// Package simulator implements admin-invoked synthetic financial operations
// used for support and testing: balance adjustments, fake transactions and
// notifications against a target user.
package simulator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	"github.com/vantage-service/vantage_service/internal/domain/services/admingate"
	"github.com/vantage-service/vantage_service/internal/domain/services/audit"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
	"github.com/vantage-service/vantage_service/pkg/metrics"
)

// Notifier dispatches out-of-band notifications (email). Best-effort.
type Notifier interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

type Service struct {
	userRepo  repositories.UserRepository
	txRepo    repositories.TransactionRepository
	notifRepo repositories.NotificationRepository // nil tolerated
	notifier  Notifier                            // nil tolerated
	gate      *admingate.Service
	auditor   *audit.Service
	logger    *zap.Logger
}

func NewService(
	userRepo repositories.UserRepository,
	txRepo repositories.TransactionRepository,
	notifRepo repositories.NotificationRepository,
	notifier Notifier,
	gate *admingate.Service,
	auditor *audit.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		userRepo:  userRepo,
		txRepo:    txRepo,
		notifRepo: notifRepo,
		notifier:  notifier,
		gate:      gate,
		auditor:   auditor,
		logger:    logger,
	}
}

// Simulate runs a batch of synthetic operations against the target user.
// Operations are independent: one failure never aborts the rest, and each
// attempted operation is audited whether or not its primary effect succeeded.
// Unknown operation types become per-item failures and are not audited
// (nothing was attempted).
func (s *Service) Simulate(ctx context.Context, actorID uuid.UUID, req *entities.SimulationRequest) ([]entities.SimulationResult, error) {
	admin, err := s.gate.Authorize(ctx, actorID)
	if err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetProfile(ctx, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	results := make([]entities.SimulationResult, 0, len(req.Operations))
	for _, op := range req.Operations {
		var result entities.SimulationResult
		switch op.Type {
		case entities.SimOpDeposit:
			result = s.adjustBalance(ctx, admin, target, op, false)
		case entities.SimOpWithdraw:
			result = s.adjustBalance(ctx, admin, target, op, true)
		case entities.SimOpTransaction:
			result = s.insertTransaction(ctx, admin, target, op)
		case entities.SimOpNotify:
			result = s.notify(ctx, admin, target, op)
		default:
			result = entities.SimulationResult{Op: op.Type, Error: "UNKNOWN_OPERATION"}
		}

		outcome := "success"
		if !result.Success {
			outcome = "failure"
		}
		metrics.SimulationOpsTotal.WithLabelValues(result.Op, outcome).Inc()
		results = append(results, result)
	}

	return results, nil
}

func (s *Service) adjustBalance(ctx context.Context, admin *entities.AdminIdentity, target *entities.Profile, op entities.SimulationOperation, negate bool) entities.SimulationResult {
	result := entities.SimulationResult{Op: op.Type}
	actionType := entities.AdminActionSimulateDeposit
	if negate {
		actionType = entities.AdminActionSimulateWithdraw
	}

	if !op.Amount.IsPositive() {
		result.Error = "amount must be positive"
		s.recordAttempt(ctx, admin, target, actionType, op, false, result.Error)
		return result
	}

	delta := op.Amount
	if negate {
		delta = delta.Neg()
	}

	newBalance, err := s.userRepo.AdjustBalance(ctx, target.UserID, delta, op.Reason)
	if err != nil {
		result.Error = apperrors.MessageOf(err)
		s.recordAttempt(ctx, admin, target, actionType, op, false, result.Error)
		return result
	}

	result.Success = true
	s.recordAttempt(ctx, admin, target, actionType, op, true, newBalance.String())
	return result
}

func (s *Service) insertTransaction(ctx context.Context, admin *entities.AdminIdentity, target *entities.Profile, op entities.SimulationOperation) entities.SimulationResult {
	result := entities.SimulationResult{Op: op.Type}

	txType := op.TransactionType
	if txType == "" {
		txType = "adjustment"
	}
	currency := op.Currency
	if currency == "" {
		currency = "USD"
	}

	tx := &entities.Transaction{
		ID:          uuid.New(),
		UserID:      target.UserID,
		Type:        txType,
		Amount:      op.Amount,
		Currency:    currency,
		Status:      "completed",
		Description: op.Description,
		Reference:   op.Reference,
		CreatedBy:   &admin.UserID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		result.Error = apperrors.MessageOf(err)
		s.recordAttempt(ctx, admin, target, entities.AdminActionSimulateTransaction, op, false, result.Error)
		return result
	}

	result.Success = true
	s.recordAttempt(ctx, admin, target, entities.AdminActionSimulateTransaction, op, true, tx.ID.String())
	return result
}

func (s *Service) notify(ctx context.Context, admin *entities.AdminIdentity, target *entities.Profile, op entities.SimulationOperation) entities.SimulationResult {
	result := entities.SimulationResult{Op: op.Type}

	if s.notifRepo == nil {
		// Missing collaborator is a soft failure: reported per item, batch
		// continues, attempt still audited.
		result.Error = "notifications unavailable"
		s.recordAttempt(ctx, admin, target, entities.AdminActionSimulateNotification, op, false, result.Error)
		return result
	}

	kind := op.Kind
	if kind == "" {
		kind = "system"
	}
	n := &entities.Notification{
		ID:        uuid.New(),
		UserID:    target.UserID,
		Title:     op.Title,
		Body:      op.Message,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifRepo.Create(ctx, n); err != nil {
		result.Error = apperrors.MessageOf(err)
		s.recordAttempt(ctx, admin, target, entities.AdminActionSimulateNotification, op, false, result.Error)
		return result
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, target.Email, op.Title, op.Message); err != nil {
			s.logger.Warn("best-effort notification email failed",
				zap.Error(err),
				zap.String("user_id", target.UserID.String()),
			)
		}
	}

	result.Success = true
	s.recordAttempt(ctx, admin, target, entities.AdminActionSimulateNotification, op, true, n.ID.String())
	return result
}

// recordAttempt audits one attempted operation. Audit failures are logged
// inside the audit service and never affect the simulation result.
func (s *Service) recordAttempt(ctx context.Context, admin *entities.AdminIdentity, target *entities.Profile, actionType entities.AdminActionType, op entities.SimulationOperation, success bool, detail string) {
	_ = s.auditor.Record(ctx, admin.UserID, actionType, target.UserID, targetTableFor(actionType), map[string]interface{}{
		"op":      op.Type,
		"amount":  op.Amount.String(),
		"reason":  op.Reason,
		"success": success,
		"detail":  detail,
	})
}

func targetTableFor(actionType entities.AdminActionType) string {
	switch actionType {
	case entities.AdminActionSimulateDeposit, entities.AdminActionSimulateWithdraw:
		return "profiles"
	case entities.AdminActionSimulateTransaction:
		return "transactions"
	case entities.AdminActionSimulateNotification:
		return "notifications"
	default:
		return ""
	}
}
