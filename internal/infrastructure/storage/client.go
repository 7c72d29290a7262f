// Package storage talks to the object storage gateway that holds uploaded
// KYC documents. The gateway stores bytes; this client only uploads on the
// user's behalf and mints short-lived signed URLs for admin review. Signed
// URLs must never be cached or persisted.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/infrastructure/config"
	"github.com/vantage-service/vantage_service/pkg/circuitbreaker"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// Client signs access URLs and forwards uploads to the storage gateway.
type Client struct {
	gatewayURL string
	secret     []byte
	defaultTTL time.Duration
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

type pathClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// NewClient creates a storage client guarded by a circuit breaker.
func NewClient(cfg config.StorageConfig, logger *zap.Logger) *Client {
	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             "storage-gateway",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		OnStateChange: func(name, from, to string) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from),
				zap.String("to", to),
			)
		},
	})

	return &Client{
		gatewayURL: cfg.GatewayURL,
		secret:     []byte(cfg.SigningSecret),
		defaultTTL: cfg.SignTTL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    breaker,
		logger:     logger,
	}
}

// Put uploads bytes to the gateway under the given path.
func (c *Client) Put(ctx context.Context, path string, body io.Reader, contentType string) error {
	target := fmt.Sprintf("%s/objects/%s", c.gatewayURL, url.PathEscape(path))

	return c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, body)
		if err != nil {
			return apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to build storage request", err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return apperrors.Wrap(apperrors.KindUpstreamFailure, "storage gateway unreachable", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return apperrors.Wrap(apperrors.KindUpstreamFailure, "storage gateway rejected upload",
				fmt.Errorf("status %d", resp.StatusCode))
		}
		return nil
	})
}

// SignURL mints a capability URL for the given storage path. The embedded
// token expires after ttl (the configured default when ttl is zero).
func (c *Client) SignURL(path string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := pathClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to sign storage url", err)
	}

	signed := fmt.Sprintf("%s/objects/%s?token=%s", c.gatewayURL, url.PathEscape(path), url.QueryEscape(token))
	return signed, expiresAt, nil
}

// VerifyToken checks a previously issued capability token and returns the
// storage path it grants access to. The gateway calls this via shared secret.
func (c *Client) VerifyToken(tokenStr string) (string, error) {
	var claims pathClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.New(apperrors.KindUnauthenticated, "invalid or expired storage token")
	}
	return claims.Path, nil
}
