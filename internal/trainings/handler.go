package trainings

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summit-delegates/backend/internal/models"
	"github.com/summit-delegates/backend/pkg/response"
)

// CreateRequest is the body for POST /api/trainings.
type CreateRequest struct {
	Name        string     `json:"name" binding:"required"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Trainer     string     `json:"trainer" binding:"required"`
	Location    string     `json:"location" binding:"required"`
	Time        string     `json:"time" binding:"required"`
	Date        string     `json:"date" binding:"required"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// UpdateRequest is the body for PUT /api/trainings/:id. All fields optional.
type UpdateRequest struct {
	Name        *string    `json:"name"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Trainer     *string    `json:"trainer"`
	Location    *string    `json:"location"`
	Time        *string    `json:"time"`
	Date        *string    `json:"date"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// Handler handles training HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a trainings handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/trainings.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list trainings failed", zap.Error(err))
		response.Internal(c, "failed to list trainings")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/trainings/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid training id")
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get training failed", zap.Error(err))
		response.Internal(c, "failed to fetch training")
		return
	}
	if t == nil {
		response.NotFound(c, "training not found")
		return
	}
	response.OK(c, t)
}

// Create handles POST /api/trainings.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t := &models.Training{
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		Trainer:     req.Trainer,
		Location:    req.Location,
		Time:        req.Time,
		Date:        req.Date,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		h.logger.Error("create training failed", zap.Error(err))
		response.Internal(c, "failed to create training")
		return
	}
	response.Created(c, t)
}

// Update handles PUT /api/trainings/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid training id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, err := h.repo.Update(c.Request.Context(), id, UpdateParams{
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		Trainer:     req.Trainer,
		Location:    req.Location,
		Time:        req.Time,
		Date:        req.Date,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		h.logger.Error("update training failed", zap.Error(err))
		response.Internal(c, "failed to update training")
		return
	}
	if t == nil {
		response.NotFound(c, "training not found")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /api/trainings/:id. Attendance and assignment rows
// cascade.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid training id")
		return
	}
	found, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete training failed", zap.Error(err))
		response.Internal(c, "failed to delete training")
		return
	}
	if !found {
		response.NotFound(c, "training not found")
		return
	}
	response.NoContent(c)
}
