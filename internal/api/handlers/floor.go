package handlers

import (
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FloorHandler handles floor-related requests
type FloorHandler struct {
	repo repository.FloorRepository
}

// NewFloorHandler creates a new FloorHandler
func NewFloorHandler(repo repository.FloorRepository) *FloorHandler {
	return &FloorHandler{repo: repo}
}

// ListFloors godoc
// @Summary List floors
// @Description Returns the floors ordered by orden, then name
// @Tags floors
// @Produce json
// @Security BearerAuth
// @Param activo query boolean false "Filter by active flag"
// @Param search query string false "Search floors by name"
// @Param limit query integer false "Limit results"
// @Param offset query integer false "Offset results"
// @Success 200 {object} models.SuccessResponse{data=[]models.Floor}
// @Failure 400 {object} models.ErrorResponse "Invalid parameters"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Router /floors [get]
func (h *FloorHandler) ListFloors(c *gin.Context) {
	var filter repository.FloorFilter
	var ok bool

	if filter.Active, ok = queryBool(c, "activo"); !ok {
		return
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if filter.Limit, filter.Offset, ok = queryPage(c); !ok {
		return
	}

	floors, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err, "list floors")
		return
	}
	respond(c, http.StatusOK, floors)
}

// GetFloor godoc
// @Summary Get a floor by ID
// @Tags floors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Floor ID"
// @Success 200 {object} models.SuccessResponse{data=models.Floor}
// @Failure 400 {object} models.ErrorResponse "Invalid floor ID"
// @Failure 404 {object} models.ErrorResponse "Floor not found"
// @Router /floors/{id} [get]
func (h *FloorHandler) GetFloor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	floor, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "get floor")
		return
	}
	respond(c, http.StatusOK, floor)
}

// CreateFloor godoc
// @Summary Create a floor
// @Tags floors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param floor body models.CreateFloorRequest true "Floor to create"
// @Success 201 {object} models.SuccessResponse{data=models.Floor}
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Failure 409 {object} models.ErrorResponse "Name already used"
// @Router /floors [post]
func (h *FloorHandler) CreateFloor(c *gin.Context) {
	var req models.CreateFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	floor := floorFromRequest(&req)
	if err := h.repo.Create(c.Request.Context(), floor); err != nil {
		handleError(c, err, "create floor")
		return
	}
	respond(c, http.StatusCreated, floor)
}

// UpdateFloor godoc
// @Summary Update a floor
// @Tags floors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Floor ID"
// @Param floor body models.CreateFloorRequest true "Updated floor"
// @Success 200 {object} models.SuccessResponse{data=models.Floor}
// @Failure 400 {object} models.ErrorResponse "Invalid request body or floor ID"
// @Failure 404 {object} models.ErrorResponse "Floor not found"
// @Failure 409 {object} models.ErrorResponse "Name already used"
// @Router /floors/{id} [put]
func (h *FloorHandler) UpdateFloor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.CreateFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	floor := floorFromRequest(&req)
	floor.ID = id
	if err := h.repo.Update(ctx, floor); err != nil {
		handleError(c, err, "update floor")
		return
	}
	updated, err := h.repo.GetByID(ctx, id)
	if err != nil {
		handleError(c, err, "update floor")
		return
	}
	respond(c, http.StatusOK, updated)
}

// DeleteFloor godoc
// @Summary Delete a floor
// @Description Soft-deletes a floor. Rejected while zones still belong to it.
// @Tags floors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Floor ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Invalid floor ID"
// @Failure 404 {object} models.ErrorResponse "Floor not found"
// @Failure 409 {object} models.ErrorResponse "Floor has zones"
// @Router /floors/{id} [delete]
func (h *FloorHandler) DeleteFloor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "delete floor")
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func floorFromRequest(req *models.CreateFloorRequest) *models.Floor {
	return &models.Floor{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Order:       req.Order,
		Active:      activeOrDefault(req.Active),
	}
}
