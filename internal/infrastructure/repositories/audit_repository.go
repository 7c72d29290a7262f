package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// AuditRepository is the Postgres implementation of the append-only audit
// store. No update or delete statements exist in this file on purpose.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, action *entities.AdminAction) error {
	query := `
		INSERT INTO admin_actions
			(id, admin_id, action_type, target_user_id, target_table, new_value, created_at)
		VALUES
			(:id, :admin_id, :action_type, :target_user_id, :target_table, :new_value, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, action); err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to append audit record", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter repositories.AuditLogFilter) ([]*entities.AdminAction, error) {
	where, args := buildAuditWhere(filter)

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(
		"SELECT * FROM admin_actions%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		where, limit, offset,
	)
	actions := []*entities.AdminAction{}
	if err := r.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to list audit records", err)
	}
	return actions, nil
}

func (r *AuditRepository) Count(ctx context.Context, filter repositories.AuditLogFilter) (int64, error) {
	where, args := buildAuditWhere(filter)
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admin_actions"+where, args...); err != nil {
		return 0, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to count audit records", err)
	}
	return count, nil
}

func buildAuditWhere(filter repositories.AuditLogFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	if filter.AdminID != nil {
		args = append(args, *filter.AdminID)
		clauses = append(clauses, fmt.Sprintf("admin_id = $%d", len(args)))
	}
	if filter.TargetUserID != nil {
		args = append(args, *filter.TargetUserID)
		clauses = append(clauses, fmt.Sprintf("target_user_id = $%d", len(args)))
	}
	if filter.ActionType != nil {
		args = append(args, *filter.ActionType)
		clauses = append(clauses, fmt.Sprintf("action_type = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
