package delegates

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/summit-delegates/backend/internal/models"
	"github.com/summit-delegates/backend/pkg/response"
)

// CreateRequest is the body for POST /api/delegates.
type CreateRequest struct {
	FullName          string `json:"full_name" binding:"required"`
	LocalOrganization string `json:"local_organization" binding:"required"`
	OrganizationType  string `json:"organization_type" binding:"required,oneof=CITY STATE NATIONAL INTERNATIONAL"`
	Email             string `json:"email" binding:"required,email"`
	PhoneNumber       string `json:"phone_number" binding:"required"`
}

// UpdateRequest is the body for PUT /api/delegates/:id. All fields optional.
type UpdateRequest struct {
	FullName          *string `json:"full_name"`
	LocalOrganization *string `json:"local_organization"`
	OrganizationType  *string `json:"organization_type" binding:"omitempty,oneof=CITY STATE NATIONAL INTERNATIONAL"`
	Email             *string `json:"email" binding:"omitempty,email"`
	PhoneNumber       *string `json:"phone_number"`
}

// AssignTrainingsRequest is the body for POST /api/delegates/:id/trainings.
type AssignTrainingsRequest struct {
	TrainingIDs []uuid.UUID `json:"training_ids" binding:"required"`
}

// BanquetSeatingRequest is the body for POST /api/delegates/:id/banquet-seating.
type BanquetSeatingRequest struct {
	TableNumber int `json:"table_number" binding:"required,min=1"`
	SeatNumber  int `json:"seat_number" binding:"required,min=1"`
}

// Handler handles delegate HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a delegates handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/delegates with page/limit/search/local_organization
// query parameters.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	params := ListParams{
		Page:              page,
		Limit:             limit,
		Search:            c.Query("search"),
		LocalOrganization: c.Query("local_organization"),
	}

	list, total, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("list delegates failed", zap.Error(err))
		response.Internal(c, "failed to list delegates")
		return
	}
	totalPages := (total + params.Limit - 1) / params.Limit
	response.OK(c, response.Page{
		Data: list,
		Pagination: response.Pagination{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: totalPages,
		},
	})
}

// GetByID handles GET /api/delegates/:id.
func (h *Handler) GetByID(c *gin.Context) {
	h.getByParam(c, "id")
}

// GetFromQR handles GET /api/delegates/qr/:delegateId. Badge QR codes
// encode the delegate id.
func (h *Handler) GetFromQR(c *gin.Context) {
	h.getByParam(c, "delegateId")
}

func (h *Handler) getByParam(c *gin.Context, param string) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	d, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get delegate failed", zap.Error(err))
		response.Internal(c, "failed to fetch delegate")
		return
	}
	if d == nil {
		response.NotFound(c, "delegate not found")
		return
	}
	response.OK(c, d)
}

// Create handles POST /api/delegates.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	d := &models.Delegate{
		FullName:          req.FullName,
		LocalOrganization: req.LocalOrganization,
		OrganizationType:  models.OrganizationType(req.OrganizationType),
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
	}
	if err := h.repo.Create(c.Request.Context(), d); err != nil {
		h.logger.Error("create delegate failed", zap.Error(err))
		response.Internal(c, "failed to create delegate")
		return
	}
	response.Created(c, d)
}

// Update handles PUT /api/delegates/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	params := UpdateParams{
		FullName:          req.FullName,
		LocalOrganization: req.LocalOrganization,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
	}
	if req.OrganizationType != nil {
		ot := models.OrganizationType(*req.OrganizationType)
		params.OrganizationType = &ot
	}
	d, err := h.repo.Update(c.Request.Context(), id, params)
	if err != nil {
		h.logger.Error("update delegate failed", zap.Error(err))
		response.Internal(c, "failed to update delegate")
		return
	}
	if d == nil {
		response.NotFound(c, "delegate not found")
		return
	}
	response.OK(c, d)
}

// Delete handles DELETE /api/delegates/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	found, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete delegate failed", zap.Error(err))
		response.Internal(c, "failed to delete delegate")
		return
	}
	if !found {
		response.NotFound(c, "delegate not found")
		return
	}
	response.NoContent(c)
}

// AssignTrainings handles POST /api/delegates/:id/trainings, replacing the
// delegate's assigned training set. Assignment is the expectation of
// attendance; it never creates attendance rows.
func (h *Handler) AssignTrainings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	var req AssignTrainingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get delegate failed", zap.Error(err))
		response.Internal(c, "failed to assign trainings")
		return
	}
	if existing == nil {
		response.NotFound(c, "delegate not found")
		return
	}
	if err := h.repo.ReplaceTrainings(c.Request.Context(), id, req.TrainingIDs); err != nil {
		h.logger.Error("assign trainings failed", zap.Error(err))
		response.Internal(c, "failed to assign trainings")
		return
	}
	d, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || d == nil {
		h.logger.Error("reload delegate failed", zap.Error(err))
		response.Internal(c, "failed to assign trainings")
		return
	}
	response.OK(c, d)
}

// BanquetSeating handles POST /api/delegates/:id/banquet-seating.
func (h *Handler) BanquetSeating(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid delegate id")
		return
	}
	var req BanquetSeatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	d, err := h.repo.SetBanquetSeating(c.Request.Context(), id, req.TableNumber, req.SeatNumber)
	if err != nil {
		h.logger.Error("assign banquet seating failed", zap.Error(err))
		response.Internal(c, "failed to assign banquet seating")
		return
	}
	if d == nil {
		response.NotFound(c, "delegate not found")
		return
	}
	response.OK(c, d)
}

// Import handles POST /api/delegates/import, a multipart CSV upload of the
// delegate roster. Rows are appended; use cmd/seed to replace the roster.
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing csv file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "unreadable csv file")
		return
	}
	defer file.Close()

	list, err := ParseCSV(file)
	if err != nil {
		response.BadRequest(c, "invalid csv: "+err.Error())
		return
	}
	if len(list) == 0 {
		response.BadRequest(c, "csv contains no delegates")
		return
	}
	count, err := h.repo.CreateBatch(c.Request.Context(), list)
	if err != nil {
		h.logger.Error("import delegates failed", zap.Error(err))
		response.Internal(c, "failed to import delegates")
		return
	}
	response.Created(c, gin.H{"imported": count})
}
