// Package review implements the admin-facing state machine for verification
// requests: submitted -> under_review -> {verified, rejected}, with the
// direct submitted -> verified/rejected shortcut.
package review

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

type Service struct {
	kycRepo  repositories.KYCRepository
	userRepo repositories.UserRepository
	gate     *admingate.Service
	auditor  *audit.Service
	logger   *zap.Logger
}

func NewService(kycRepo repositories.KYCRepository, userRepo repositories.UserRepository, gate *admingate.Service, auditor *audit.Service, logger *zap.Logger) *Service {
	return &Service{
		kycRepo:  kycRepo,
		userRepo: userRepo,
		gate:     gate,
		auditor:  auditor,
		logger:   logger,
	}
}

// Review applies an admin decision to a verification request and projects it
// onto the owning profile.
//
// The request row and the profile row are two separate writes against the
// shared store. When the second write fails the first is NOT rolled back: the
// caller sees an error and the profile lags until the next review. Concurrent
// reviews of the same request are not excluded either; last writer wins and
// every review leaves its own audit record.
func (s *Service) Review(ctx context.Context, actorID uuid.UUID, req *entities.KYCReviewRequest) (*entities.KYCRequest, error) {
	admin, err := s.gate.Authorize(ctx, actorID)
	if err != nil {
		return nil, err
	}

	newStatus := entities.KYCStatus(req.Status)
	if !newStatus.IsReviewOutcome() {
		return nil, apperrors.New(apperrors.KindInvalidTransition, "status must be verified, rejected or under_review")
	}

	request, err := s.kycRepo.GetRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// Reason stays optional even for rejections; the review tools prompt for
	// one but the store does not require it.
	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}

	if err := s.kycRepo.UpdateReview(ctx, request.ID, newStatus, admin.UserID, reason, now); err != nil {
		return nil, err
	}

	update := repositories.ProfileKYCUpdate{Status: newStatus}
	if newStatus == entities.KYCStatusRejected {
		update.RejectionReason = reason
	}
	profileErr := s.userRepo.SetKYCStatus(ctx, request.UserID, update)

	// The request mutation stands either way, so the audit entry is written
	// before the divergence is reported.
	_ = s.auditor.Record(ctx, admin.UserID, entities.AdminActionKYCReview, request.UserID, "kyc_requests", map[string]interface{}{
		"request_id": request.ID.String(),
		"status":     string(newStatus),
		"reason":     req.Reason,
	})

	if profileErr != nil {
		s.logger.Error("profile kyc status diverged from reviewed request",
			zap.Error(profileErr),
			zap.String("request_id", request.ID.String()),
			zap.String("user_id", request.UserID.String()),
			zap.String("status", string(newStatus)),
		)
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "request reviewed but profile update failed", profileErr)
	}

	metrics.KYCReviewsTotal.WithLabelValues(string(newStatus)).Inc()
	s.logger.Info("kyc request reviewed",
		zap.String("request_id", request.ID.String()),
		zap.String("status", string(newStatus)),
		zap.String("reviewed_by", admin.UserID.String()),
	)

	request.Status = newStatus
	request.ReviewedAt = &now
	request.ReviewedBy = &admin.UserID
	request.ReviewReason = reason
	return request, nil
}

// ListRequests returns verification requests for the admin review queue.
func (s *Service) ListRequests(ctx context.Context, actorID uuid.UUID, filter repositories.KYCRequestFilter) ([]*entities.KYCRequest, int64, error) {
	if _, err := s.gate.Authorize(ctx, actorID); err != nil {
		return nil, 0, err
	}
	return s.kycRepo.ListRequests(ctx, filter)
}

// GetRequestDetail returns one request with its documents, admin-only.
func (s *Service) GetRequestDetail(ctx context.Context, actorID, requestID uuid.UUID) (*entities.KYCRequestDetail, error) {
	if _, err := s.gate.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	return s.kycRepo.GetRequestDetail(ctx, requestID)
}

// GetDocument returns a document row, admin-only. Even the owning user is
// refused; documents are only reachable through signed URLs issued here.
func (s *Service) GetDocument(ctx context.Context, actorID, documentID uuid.UUID) (*entities.KYCDocument, error) {
	if _, err := s.gate.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	return s.kycRepo.GetDocument(ctx, documentID)
}
