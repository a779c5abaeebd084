package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summit-delegates/backend/internal/models"
)

var (
	// ErrUnauthenticated means the credential did not resolve to an
	// existing, non-revoked user. Maps to HTTP 401.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the caller is authenticated but its role is not in
	// the operation's allow-list. Maps to HTTP 403; never conflated with
	// ErrUnauthenticated.
	ErrForbidden = errors.New("forbidden")
)

// ContextUser is the gin context key holding the authenticated *models.User.
const ContextUser = "auth_user"

// ContextToken is the gin context key holding the raw bearer token.
const ContextToken = "auth_token"

// UserStore looks up users for credential resolution. GetByID returns
// (nil, nil) when no user exists.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service authenticates bearer tokens into users. Authorization is the
// pure Authorize function; it never touches storage.
type Service struct {
	jwt      *JWTService
	users    UserStore
	denylist *Denylist
	logger   *zap.Logger
}

// NewService creates an auth service. denylist may be nil, disabling
// token revocation.
func NewService(jwtService *JWTService, users UserStore, denylist *Denylist, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{jwt: jwtService, users: users, denylist: denylist, logger: logger}
}

// Authenticate resolves a bearer token to an existing user. Any decoding
// failure, expiry, revocation, or missing user yields ErrUnauthenticated.
// No side effects.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("denylist lookup failed", zap.Error(err))
			return nil, fmt.Errorf("%w: revocation check failed", ErrUnauthenticated)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("user lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: user lookup failed", ErrUnauthenticated)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	}
	return user, nil
}

// Revoke adds the token's jti to the denylist until the token expires.
// A nil denylist makes this a no-op.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if s.denylist == nil {
		return nil
	}
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.denylist.Revoke(ctx, claims.ID, ttl)
}

// Authorize succeeds iff the user's role is in the allow-list. Pure
// role-based check: the payload being acted on is never consulted and
// there is no "self" exception.
func Authorize(user *models.User, allowed ...models.Role) error {
	for _, r := range allowed {
		if user.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s not permitted", ErrForbidden, user.Role)
}

// UserFromContext returns the authenticated user stored by the
// authentication middleware.
func UserFromContext(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
