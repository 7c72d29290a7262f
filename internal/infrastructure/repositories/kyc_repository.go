package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// KYCRepository is the Postgres implementation of repositories.KYCRepository.
type KYCRepository struct {
	db *sqlx.DB
}

// NewKYCRepository creates a KYCRepository.
func NewKYCRepository(db *sqlx.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

func (r *KYCRepository) CreateRequest(ctx context.Context, req *entities.KYCRequest) error {
	query := `
		INSERT INTO kyc_requests (id, user_id, status, submitted_at, metadata)
		VALUES (:id, :user_id, :status, :submitted_at, :metadata)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to create kyc request", err)
	}
	return nil
}

// DeleteRequest removes an unreviewed request whose documents failed to
// attach. Document rows cascade.
func (r *KYCRepository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM kyc_requests WHERE id = $1 AND reviewed_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to delete kyc request", err)
	}
	return nil
}

func (r *KYCRepository) AttachDocuments(ctx context.Context, docs []*entities.KYCDocument) error {
	query := `
		INSERT INTO kyc_documents
			(id, request_id, user_id, doc_type, storage_path, file_name, mime_type, size, meta, created_at)
		VALUES
			(:id, :request_id, :user_id, :doc_type, :storage_path, :file_name, :mime_type, :size, :meta, :created_at)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to begin document attach", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if _, err := tx.NamedExecContext(ctx, query, doc); err != nil {
			return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to attach document", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to commit document attach", err)
	}
	return nil
}

func (r *KYCRepository) GetRequest(ctx context.Context, id uuid.UUID) (*entities.KYCRequest, error) {
	var req entities.KYCRequest
	query := `SELECT * FROM kyc_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.KindNotFound, "kyc request not found")
		}
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to load kyc request", err)
	}
	return &req, nil
}

func (r *KYCRepository) GetRequestDetail(ctx context.Context, id uuid.UUID) (*entities.KYCRequestDetail, error) {
	req, err := r.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	docs := []entities.KYCDocument{}
	query := `SELECT * FROM kyc_documents WHERE request_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &docs, query, id); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to load kyc documents", err)
	}

	return &entities.KYCRequestDetail{KYCRequest: *req, Documents: docs}, nil
}

func (r *KYCRepository) LatestRequestByUser(ctx context.Context, userID uuid.UUID) (*entities.KYCRequest, error) {
	var req entities.KYCRequest
	query := `
		SELECT * FROM kyc_requests
		WHERE user_id = $1
		ORDER BY submitted_at DESC
		LIMIT 1`
	if err := r.db.GetContext(ctx, &req, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.KindNotFound, "no kyc request for user")
		}
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to load latest kyc request", err)
	}
	return &req, nil
}

func (r *KYCRepository) ListRequests(ctx context.Context, filter repositories.KYCRequestFilter) ([]*entities.KYCRequest, int64, error) {
	where, args := buildKYCWhere(filter)

	countQuery := "SELECT COUNT(*) FROM kyc_requests" + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to count kyc requests", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	listQuery := fmt.Sprintf(
		"SELECT * FROM kyc_requests%s ORDER BY submitted_at DESC LIMIT %d OFFSET %d",
		where, limit, offset,
	)
	reqs := []*entities.KYCRequest{}
	if err := r.db.SelectContext(ctx, &reqs, listQuery, args...); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to list kyc requests", err)
	}
	return reqs, total, nil
}

func buildKYCWhere(filter repositories.KYCRequestFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *KYCRepository) UpdateReview(ctx context.Context, id uuid.UUID, status entities.KYCStatus, reviewedBy uuid.UUID, reason *string, reviewedAt time.Time) error {
	query := `
		UPDATE kyc_requests
		SET status = $2, reviewed_at = $3, reviewed_by = $4, review_reason = $5
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, reviewedAt, reviewedBy, reason)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to update kyc request", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to read update result", err)
	}
	if rows == 0 {
		return apperrors.New(apperrors.KindNotFound, "kyc request not found")
	}
	return nil
}

func (r *KYCRepository) GetDocument(ctx context.Context, id uuid.UUID) (*entities.KYCDocument, error) {
	var doc entities.KYCDocument
	query := `SELECT * FROM kyc_documents WHERE id = $1`
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.KindNotFound, "kyc document not found")
		}
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to load kyc document", err)
	}
	return &doc, nil
}
