package attendance

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summit-delegates/backend/internal/auth"
	"github.com/summit-delegates/backend/pkg/response"
)

// Handler handles attendance HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// CheckIn handles POST /api/attendance/check-in/:trainingId. The user being
// checked in is always the authenticated caller. 201 when a new attendance
// row was created, 200 when an existing registration transitioned.
func (h *Handler) CheckIn(c *gin.Context) {
	trainingID, err := uuid.Parse(c.Param("trainingId"))
	if err != nil {
		response.BadRequest(c, "invalid training id")
		return
	}
	user, ok := auth.UserFromContext(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	record, created, err := h.svc.CheckIn(c.Request.Context(), trainingID, user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if created {
		response.Created(c, record)
		return
	}
	response.OK(c, record)
}

// Stats handles GET /api/attendance/stats/:trainingId.
func (h *Handler) Stats(c *gin.Context) {
	trainingID, err := uuid.Parse(c.Param("trainingId"))
	if err != nil {
		response.BadRequest(c, "invalid training id")
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), trainingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, stats)
}

// TrainingAttendance handles GET /api/attendance/training/:trainingId.
func (h *Handler) TrainingAttendance(c *gin.Context) {
	trainingID, err := uuid.Parse(c.Param("trainingId"))
	if err != nil {
		response.BadRequest(c, "invalid training id")
		return
	}
	list, err := h.svc.TrainingAttendance(c.Request.Context(), trainingID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, list)
}

// UserAttendance handles GET /api/attendance/user/:userId.
func (h *Handler) UserAttendance(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	list, err := h.svc.UserAttendance(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, list)
}

// respondError maps the attendance error taxonomy to status codes.
// Storage detail stays in the logs, never in the response body.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTrainingNotFound):
		response.NotFound(c, "training not found")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(c, "user not found")
	case errors.Is(err, ErrAlreadyCheckedIn):
		response.BadRequest(c, "already checked in")
	case errors.Is(err, ErrUnavailable):
		h.logger.Error("attendance storage failure", zap.Error(err))
		response.ServiceUnavailable(c, "service temporarily unavailable")
	default:
		h.logger.Error("attendance internal error", zap.Error(err))
		response.Internal(c, "internal server error")
	}
}
