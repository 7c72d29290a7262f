package kyc

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/api/handlers/common"
	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/services/kyc"
	"github.com/vantage-service/vantage_service/pkg/logger"
	"github.com/vantage-service/vantage_service/pkg/validation"
)

type Handler struct {
	kycService *kyc.Service
	validator  *validation.Validator
	logger     *logger.Logger
}

func NewHandler(kycService *kyc.Service, validator *validation.Validator, log *logger.Logger) *Handler {
	return &Handler{
		kycService: kycService,
		validator:  validator,
		logger:     log,
	}
}

// Submit handles POST /kyc/submit. The documents themselves were uploaded to
// the object store beforehand; this accepts their descriptors.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}

	var req entities.KYCSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid kyc submission payload",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		common.RespondBadRequest(c, "invalid request format", nil)
		return
	}

	for _, doc := range req.Documents {
		if err := h.validator.Validate(doc); err != nil {
			common.RespondBadRequest(c, "invalid document descriptor", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
	}

	req.UserID = userID
	resp, err := h.kycService.Submit(ctx, &req)
	if err != nil {
		h.logger.Warn("kyc submission failed",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		common.RespondAppError(c, err, false)
		return
	}

	common.RespondCreated(c, resp)
}

// Status handles GET /kyc/status.
func (h *Handler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := common.GetUserID(c)
	if !ok {
		common.RespondUnauthorized(c, "authentication required")
		return
	}

	status, err := h.kycService.Status(ctx, userID)
	if err != nil {
		h.logger.Error("failed to load kyc status",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		common.RespondAppError(c, err, false)
		return
	}

	common.RespondSuccess(c, status)
}
