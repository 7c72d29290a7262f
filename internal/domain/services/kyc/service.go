// Package kyc implements document intake: turning a set of already-uploaded
// document descriptors into a verification request.
package kyc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
	"github.com/vantage-service/vantage_service/pkg/metrics"
)

type Service struct {
	kycRepo  repositories.KYCRepository
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

func NewService(kycRepo repositories.KYCRepository, userRepo repositories.UserRepository, logger *zap.Logger) *Service {
	return &Service{kycRepo: kycRepo, userRepo: userRepo, logger: logger}
}

// Submit creates a verification request in status submitted and attaches all
// document descriptors to it. Only metadata shape is checked here; the stored
// bytes are never inspected.
//
// The request row is created first because documents reference it. If the
// attach fails the request is deleted again: a partial submission must never
// become visible to review.
func (s *Service) Submit(ctx context.Context, req *entities.KYCSubmitRequest) (*entities.KYCSubmitResponse, error) {
	if len(req.Documents) == 0 {
		metrics.KYCSubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.New(apperrors.KindInvalidSubmission, "at least one document is required")
	}

	now := time.Now().UTC()
	request := &entities.KYCRequest{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Status:      entities.KYCStatusSubmitted,
		SubmittedAt: now,
		Metadata:    req.Metadata,
	}

	if err := s.kycRepo.CreateRequest(ctx, request); err != nil {
		metrics.KYCSubmissionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	docs := make([]*entities.KYCDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, &entities.KYCDocument{
			ID:          uuid.New(),
			RequestID:   request.ID,
			UserID:      req.UserID,
			DocType:     normalizeDocType(d.DocType),
			StoragePath: d.StoragePath,
			FileName:    d.FileName,
			MimeType:    d.MimeType,
			Size:        d.Size,
			Meta:        d.Meta,
			CreatedAt:   now,
		})
	}

	if err := s.kycRepo.AttachDocuments(ctx, docs); err != nil {
		if delErr := s.kycRepo.DeleteRequest(ctx, request.ID); delErr != nil {
			s.logger.Error("failed to roll back kyc request after document attach failure",
				zap.Error(delErr),
				zap.String("request_id", request.ID.String()),
			)
		}
		metrics.KYCSubmissionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	update := repositories.ProfileKYCUpdate{
		Status:      entities.KYCStatusSubmitted,
		RequestedAt: &now,
	}
	if err := s.userRepo.SetKYCStatus(ctx, req.UserID, update); err != nil {
		// The request and its documents stand; the profile projection is
		// behind until the next status write. Same divergence tolerance as
		// the review path.
		s.logger.Error("profile kyc status diverged from request after submission",
			zap.Error(err),
			zap.String("request_id", request.ID.String()),
			zap.String("user_id", req.UserID.String()),
		)
		metrics.KYCSubmissionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.KYCSubmissionsTotal.WithLabelValues("submitted").Inc()
	s.logger.Info("kyc request submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.Int("documents", len(docs)),
	)

	return &entities.KYCSubmitResponse{
		RequestID:     request.ID,
		Status:        request.Status,
		SubmittedAt:   request.SubmittedAt,
		DocumentCount: len(docs),
	}, nil
}

// Status reports the caller's current verification state from the profile
// projection plus the latest request.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*entities.KYCStatusResponse, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &entities.KYCStatusResponse{
		UserID:          userID,
		Status:          profile.KYCStatus,
		RejectionReason: profile.KYCRejectionReason,
	}
	if resp.Status == "" {
		resp.Status = entities.KYCStatusNone
	}

	latest, err := s.kycRepo.LatestRequestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}

	resp.HasSubmitted = true
	resp.LastSubmittedAt = &latest.SubmittedAt
	resp.ReviewedAt = latest.ReviewedAt
	return resp, nil
}

func normalizeDocType(declared string) entities.DocType {
	switch entities.DocType(declared) {
	case entities.DocTypeIDCard, entities.DocTypeProofOfAddress, entities.DocTypeSelfie:
		return entities.DocType(declared)
	default:
		return entities.DocTypeUnknown
	}
}
