package users

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summit-delegates/backend/internal/models"
	"github.com/summit-delegates/backend/pkg/response"
	"github.com/summit-delegates/backend/pkg/utils"
)

// CreateRequest is the body for POST /api/users. Role is restricted to
// ADMIN or DELEGATE; SUPER_ADMIN is seeded, never created over HTTP.
type CreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=ADMIN DELEGATE"`
}

// UpdateRequest is the body for PUT /api/users/:id. All fields optional.
type UpdateRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Name     *string `json:"name"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN DELEGATE"`
}

// Handler handles user management HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/users.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/users/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get user failed", zap.Error(err))
		response.Internal(c, "failed to fetch user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// Create handles POST /api/users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.Name, models.Role(req.Role))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.BadRequest(c, "email already in use")
			return
		}
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, user.ToPublic())
}

// Update handles PUT /api/users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	params := UpdateParams{Email: req.Email, Name: req.Name}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			h.logger.Error("hash password failed", zap.Error(err))
			response.Internal(c, "failed to update user")
			return
		}
		params.PasswordHash = &hash
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		params.Role = &role
	}

	user, err := h.repo.Update(c.Request.Context(), id, params)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.BadRequest(c, "email already in use")
			return
		}
		h.logger.Error("update user failed", zap.Error(err))
		response.Internal(c, "failed to update user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user.ToPublic())
}

// Delete handles DELETE /api/users/:id. Attendance rows cascade.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	found, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete user failed", zap.Error(err))
		response.Internal(c, "failed to delete user")
		return
	}
	if !found {
		response.NotFound(c, "user not found")
		return
	}
	response.NoContent(c)
}
