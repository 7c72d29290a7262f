package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/api/handlers/common"
	"github.com/vantage-service/vantage_service/pkg/logger"
)

// AuthClaims is the token shape issued by the external auth service.
type AuthClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Authentication resolves the bearer credential to a caller identity and
// stores user_id and user_email on the request context. It establishes who
// the caller is, nothing more; admin checks are re-run by every privileged
// operation against the profile store.
func Authentication(jwtSecret string, log *logger.Logger) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.RespondUnauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			common.RespondUnauthorized(c, "malformed authorization header")
			c.Abort()
			return
		}

		var claims AuthClaims
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Debug("bearer token rejected", zap.Error(err))
			common.RespondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			common.RespondUnauthorized(c, "token subject is not a valid identity")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}
