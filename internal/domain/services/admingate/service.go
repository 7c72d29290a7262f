// Package admingate performs the privileged-action authorization check. The
// admin flag is re-read from the profile store on every call; nothing here is
// cached across requests.
package admingate

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantage-service/vantage_service/internal/domain/entities"
	"github.com/vantage-service/vantage_service/internal/domain/services/audit"
	apperrors "github.com/vantage-service/vantage_service/pkg/errors"
)

// ProfileReader is the slice of the user repository the gate needs.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error)
}

type Service struct {
	profiles         ProfileReader
	auditor          *audit.Service
	jwtSecret        []byte
	issuer           string
	impersonationTTL time.Duration
	logger           *zap.Logger
}

func NewService(profiles ProfileReader, auditor *audit.Service, jwtSecret, issuer string, impersonationTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		profiles:         profiles,
		auditor:          auditor,
		jwtSecret:        []byte(jwtSecret),
		issuer:           issuer,
		impersonationTTL: impersonationTTL,
		logger:           logger,
	}
}

// Authorize resolves the caller to an admin identity. The is_admin flag must
// be exactly true; a resolved caller without it gets Forbidden.
func (s *Service) Authorize(ctx context.Context, userID uuid.UUID) (*entities.AdminIdentity, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// The token resolved but no profile backs it.
			return nil, apperrors.New(apperrors.KindUnauthenticated, "caller identity could not be resolved")
		}
		return nil, err
	}

	if !profile.IsAdmin {
		s.logger.Warn("privileged action denied",
			zap.String("user_id", userID.String()),
		)
		return nil, apperrors.New(apperrors.KindForbidden, "admin privileges required")
	}

	return &entities.AdminIdentity{UserID: profile.UserID, Email: profile.Email}, nil
}

type impersonationClaims struct {
	ActorID string `json:"act"`
	jwt.RegisteredClaims
}

// Impersonate authorizes an admin to act as the target user and returns a
// short-lived grant. Self-impersonation is rejected regardless of role.
func (s *Service) Impersonate(ctx context.Context, actorID, targetID uuid.UUID) (*entities.ImpersonationGrant, error) {
	admin, err := s.Authorize(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if admin.UserID == targetID {
		return nil, apperrors.New(apperrors.KindInvalidTarget, "cannot impersonate own account")
	}

	target, err := s.profiles.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.impersonationTTL)
	claims := impersonationClaims{
		ActorID: admin.UserID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   target.UserID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{"impersonation"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamFailure, "failed to sign impersonation grant", err)
	}

	// Audit failure does not revoke the grant; the mutation already stands.
	_ = s.auditor.Record(ctx, admin.UserID, entities.AdminActionUserImpersonation, target.UserID, "profiles", map[string]interface{}{
		"target_email": target.Email,
		"expires_at":   expiresAt.Format(time.RFC3339),
	})

	return &entities.ImpersonationGrant{
		TargetUserID: target.UserID,
		Token:        token,
		ExpiresAt:    expiresAt,
	}, nil
}
