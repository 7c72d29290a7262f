package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// NotificationRepository persists user notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, body, kind, read, created_at)
		VALUES (:id, :user_id, :title, :body, :kind, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to create notification", err)
	}
	return nil
}
