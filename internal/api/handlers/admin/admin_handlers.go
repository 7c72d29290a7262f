// Package admin holds the privileged endpoints. Every handler re-derives the
// caller's admin role through the gate on each call; nothing trusts a cached
// flag from an earlier request.
package admin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/api/handlers/common"
	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/repositories"
	"github.com/vantage-service/vantage_service/internal/domain/services/admingate"
	"github.com/vantage-service/vantage_service/internal/domain/services/audit"
	"github.com/vantage-service/vantage_service/internal/domain/services/review"
	"github.com/vantage-service/vantage_service/internal/domain/services/simulator"
	"github.com/vantage-service/vantage_service/internal/infrastructure/storage"
	"github.com/vantage-service/vantage_service/pkg/logger"
	"github.com/vantage-service/vantage_service/pkg/validation"
)

type Handler struct {
	reviewService *review.Service
	simService    *simulator.Service
	auditService  *audit.Service
	gate          *admingate.Service
	storage       *storage.Client
	validator     *validation.Validator
	logger        *logger.Logger
}

func NewHandler(
	reviewService *review.Service,
	simService *simulator.Service,
	auditService *audit.Service,
	gate *admingate.Service,
	storageClient *storage.Client,
	validator *validation.Validator,
	log *logger.Logger,
) *Handler {
	return &Handler{
		reviewService: reviewService,
		simService:    simService,
		auditService:  auditService,
		gate:          gate,
		storage:       storageClient,
		validator:     validator,
		logger:        log,
	}
}

// ListKYCRequests handles GET /admin/kyc/requests. With ?id= it returns one
// request with its documents; otherwise a paginated listing.
func (h *Handler) ListKYCRequests(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}

	if rawID := c.Query("id"); rawID != "" {
		requestID, err := uuid.Parse(rawID)
		if err != nil {
			common.RespondBadRequest(c, "invalid request id", nil)
			return
		}
		detail, err := h.reviewService.GetRequestDetail(ctx, actorID, requestID)
		if err != nil {
			common.RespondAppError(c, err, true)
			return
		}
		common.RespondSuccess(c, detail)
		return
	}

	pagination := common.ExtractPagination(c, 20, 100)
	filter := repositories.KYCRequestFilter{
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		status := entities.KYCStatus(rawStatus)
		filter.Status = &status
	}

	requests, total, err := h.reviewService.ListRequests(ctx, actorID, filter)
	if err != nil {
		common.RespondAppError(c, err, true)
		return
	}

	common.RespondSuccess(c, gin.H{
		"requests": requests,
		"total":    total,
		"limit":    pagination.Limit,
		"offset":   pagination.Offset,
	})
}

// ReviewKYC handles POST /admin/kyc/review.
func (h *Handler) ReviewKYC(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}

	var req entities.KYCReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "invalid request format", nil)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		common.RespondBadRequest(c, err.Error(), nil)
		return
	}

	updated, err := h.reviewService.Review(ctx, actorID, &req)
	if err != nil {
		h.logger.Warn("kyc review failed",
			zap.Error(err),
			zap.String("request_id", req.RequestID.String()),
			zap.String("actor_id", actorID.String()),
		)
		common.RespondAppError(c, err, true)
		return
	}

	common.RespondSuccess(c, updated)
}

// GetDocumentURL handles GET /admin/kyc/document?id=. It responds with a
// short-lived signed URL; the storage path itself is never exposed. Access is
// admin-only even for the document's owner.
func (h *Handler) GetDocumentURL(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}

	documentID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		common.RespondBadRequest(c, "invalid document id", nil)
		return
	}

	doc, err := h.reviewService.GetDocument(ctx, actorID, documentID)
	if err != nil {
		common.RespondAppError(c, err, true)
		return
	}

	url, expiresAt, err := h.storage.SignURL(doc.StoragePath, 0)
	if err != nil {
		common.RespondAppError(c, err, true)
		return
	}

	common.RespondSuccess(c, gin.H{
		"document_id": doc.ID,
		"file_name":   doc.FileName,
		"mime_type":   doc.MimeType,
		"url":         url,
		"expires_at":  expiresAt.Format(time.RFC3339),
	})
}

type impersonateRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// Impersonate handles POST /admin/users/impersonate.
func (h *Handler) Impersonate(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}

	var req impersonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "invalid request format", nil)
		return
	}
	if req.UserID == uuid.Nil {
		common.RespondBadRequest(c, "user_id is required", nil)
		return
	}

	grant, err := h.gate.Impersonate(ctx, actorID, req.UserID)
	if err != nil {
		h.logger.Warn("impersonation denied",
			zap.Error(err),
			zap.String("actor_id", actorID.String()),
			zap.String("target_user_id", req.UserID.String()),
		)
		common.RespondAppError(c, err, true)
		return
	}

	common.RespondSuccess(c, grant)
}

// Simulate handles POST /admin/simulate.
func (h *Handler) Simulate(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}

	var req entities.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "invalid request format", nil)
		return
	}
	if req.TargetUserID == uuid.Nil || len(req.Operations) == 0 {
		common.RespondBadRequest(c, "target_user_id and at least one operation are required", nil)
		return
	}

	results, err := h.simService.Simulate(ctx, actorID, &req)
	if err != nil {
		common.RespondAppError(c, err, true)
		return
	}

	common.RespondSuccess(c, gin.H{"results": results})
}

// ListAudit handles GET /admin/audit.
func (h *Handler) ListAudit(c *gin.Context) {
	ctx := c.Request.Context()

	actorID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}
	if _, err := h.gate.Authorize(ctx, actorID); err != nil {
		common.RespondAppError(c, err, true)
		return
	}

	pagination := common.ExtractPagination(c, 50, 500)
	filter := repositories.AuditLogFilter{
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}
	if raw := c.Query("target_user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "invalid target_user_id", nil)
			return
		}
		filter.TargetUserID = &id
	}
	if raw := c.Query("action_type"); raw != "" {
		actionType := entities.AdminActionType(raw)
		filter.ActionType = &actionType
	}

	actions, total, err := h.auditService.List(ctx, filter)
	if err != nil {
		common.RespondAppError(c, err, true)
		return
	}

	common.RespondSuccess(c, gin.H{
		"actions": actions,
		"total":   total,
		"limit":   pagination.Limit,
		"offset":  pagination.Offset,
	})
}
