package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// TransactionRepository persists synthetic transactions written by the
// simulator.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO transactions
			(id, user_id, type, amount, currency, status, description, reference, created_by, created_at)
		VALUES
			(:id, :user_id, :type, :amount, :currency, :status, :description, :reference, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to create transaction", err)
	}
	return nil
}
