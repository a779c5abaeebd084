package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/summit-delegates/backend/internal/models"
	"github.com/summit-delegates/backend/pkg/response"
	"github.com/summit-delegates/backend/pkg/utils"
)

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// CredentialStore looks up users by email for login.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	users  CredentialStore
	jwt    *JWTService
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(users CredentialStore, jwtService *JWTService, svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{users: users, jwt: jwtService, svc: svc, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("login lookup failed", zap.Error(err))
		response.Internal(c, "failed to log in")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Me handles GET /api/auth/me. Requires the authentication middleware.
func (h *Handler) Me(c *gin.Context) {
	user, ok := UserFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	response.OK(c, user.ToPublic())
}

// Logout handles POST /api/auth/logout. Revokes the presented token until
// its expiry; without a denylist this is a no-op.
func (h *Handler) Logout(c *gin.Context) {
	token := c.GetString(ContextToken)
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		response.Unauthorized(c, "missing authorization header")
		return
	}
	if err := h.svc.Revoke(c.Request.Context(), token); err != nil {
		h.logger.Error("revoke token failed", zap.Error(err))
		response.Internal(c, "failed to log out")
		return
	}
	response.OK(c, gin.H{"logged_out": true})
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
