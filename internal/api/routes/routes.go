// Package routes wires handlers onto the gin router.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandlers "github.com/vantage-service/vantage_service/internal/api/handlers/admin"
	kychandlers "github.com/vantage-service/vantage_service/internal/api/handlers/kyc"
	"github.com/vantage-service/vantage_service/internal/api/middleware"
	"github.com/vantage-service/vantage_service/internal/infrastructure/config"
	"github.com/vantage-service/vantage_service/pkg/logger"
)

// Register mounts all routes. Admin routes carry the same authentication
// middleware as user routes; the admin role itself is checked inside each
// privileged service call, never here.
func Register(
	router *gin.Engine,
	kycHandler *kychandlers.Handler,
	adminHandler *adminhandlers.Handler,
	rateLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log *logger.Logger,
	db *sqlx.DB,
) {
	router.GET("/health", healthHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.Metrics(),
		middleware.Timeout(cfg.Server.RequestTimeout),
		rateLimiter.Limit(),
		middleware.Authentication(cfg.Auth.JWTSecret, log),
	)

	kyc := api.Group("/kyc")
	{
		kyc.POST("/submit", kycHandler.Submit)
		kyc.GET("/status", kycHandler.Status)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/kyc/requests", adminHandler.ListKYCRequests)
		admin.POST("/kyc/review", adminHandler.ReviewKYC)
		admin.GET("/kyc/document", adminHandler.GetDocumentURL)
		admin.POST("/users/impersonate", adminHandler.Impersonate)
		admin.POST("/simulate", adminHandler.Simulate)
		admin.GET("/audit", adminHandler.ListAudit)
	}
}

func healthHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
