// Package common holds response helpers shared by all handlers.
package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// GetUserID extracts the authenticated user ID set by the auth middleware.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	switch v := val.(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil
	default:
		return uuid.Nil, false
	}
}

// GetRequestID extracts the request ID set by the request-id middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// RespondError sends a standardized error response.
func RespondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// RespondUnauthorized sends a 401.
func RespondUnauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", message, nil)
}

// RespondForbidden sends a 403.
func RespondForbidden(c *gin.Context, message string) {
	RespondError(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

// RespondBadRequest sends a 400.
func RespondBadRequest(c *gin.Context, message string, details map[string]interface{}) {
	RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", message, details)
}

// RespondSuccess sends a 200 with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 with data.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondAppError maps a service error onto the transport taxonomy.
// Admin-facing handlers pass includeCause=true so the upstream error string
// is exposed for debuggability; user-facing handlers keep the generic message.
func RespondAppError(c *gin.Context, err error, includeCause bool) {
	kind := apperrors.KindOf(err)

	var details map[string]interface{}
	if includeCause {
		if cause := apperrors.CauseOf(err); cause != "" {
			details = map[string]interface{}{"cause": cause}
		}
	}

	RespondError(c, statusFor(kind), kind.Code(), apperrors.MessageOf(err), details)
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindForbidden, apperrors.KindInvalidTarget:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidSubmission, apperrors.KindInvalidTransition, apperrors.KindInvalidPayload:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PaginationParams holds offset pagination extracted from the query string.
type PaginationParams struct {
	Limit  int
	Offset int
}

// ExtractPagination reads page/limit query parameters with bounds.
func ExtractPagination(c *gin.Context, defaultLimit, maxLimit int) PaginationParams {
	limit := queryInt(c, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	return PaginationParams{Limit: limit, Offset: (page - 1) * limit}
}

func queryInt(c *gin.Context, param string, defaultVal int) int {
	raw := c.Query(param)
	if raw == "" {
		return defaultVal
	}
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return defaultVal
		}
		n = n*10 + int(r-'0')
		if n > 1<<30 {
			return defaultVal
		}
	}
	return n
}
