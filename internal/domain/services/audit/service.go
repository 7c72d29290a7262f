// Package audit appends the privileged-action trail. The log is append-only:
// nothing in the service or its repository can update or delete a record.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	"github.com/vantage-service/vantage_service/pkg/metrics"
)

type Service struct {
	repo   repositories.AuditRepository
	logger *zap.Logger
}

func NewService(repo repositories.AuditRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends one audit row documenting a privileged mutation. Callers
// invoke it after their primary mutation; a failed append is logged and
// returned, but callers must not unwind the mutation because of it.
func (s *Service) Record(ctx context.Context, adminID uuid.UUID, actionType entities.AdminActionType, targetUserID uuid.UUID, targetTable string, newValue map[string]interface{}) error {
	action := &entities.AdminAction{
		ID:           uuid.New(),
		AdminID:      adminID,
		ActionType:   actionType,
		TargetUserID: targetUserID,
		TargetTable:  targetTable,
		NewValue:     newValue,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, action); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		s.logger.Error("failed to append audit record",
			zap.Error(err),
			zap.String("action_type", string(actionType)),
			zap.String("admin_id", adminID.String()),
			zap.String("target_user_id", targetUserID.String()),
		)
		return err
	}

	metrics.AdminActionsTotal.WithLabelValues(string(actionType)).Inc()
	s.logger.Info("audit record appended",
		zap.String("action_type", string(actionType)),
		zap.String("admin_id", adminID.String()),
		zap.String("target_user_id", targetUserID.String()),
		zap.String("target_table", targetTable),
	)
	return nil
}

// List returns audit records matching the filter plus the total match count.
func (s *Service) List(ctx context.Context, filter repositories.AuditLogFilter) ([]*entities.AdminAction, int64, error) {
	actions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return actions, count, nil
}
