package handlers

import (
	"errors"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ZoneHandler handles zone-related requests
type ZoneHandler struct {
	repo repository.ZoneRepository
}

// NewZoneHandler creates a new ZoneHandler
func NewZoneHandler(repo repository.ZoneRepository) *ZoneHandler {
	return &ZoneHandler{repo: repo}
}

// ListZones godoc
// @Summary List zones
// @Description Returns the zones ordered by orden, then name
// @Tags zones
// @Produce json
// @Security BearerAuth
// @Param piso_id query string false "Filter by floor"
// @Param activo query boolean false "Filter by active flag"
// @Param search query string false "Search zones by name"
// @Param limit query integer false "Limit results"
// @Param offset query integer false "Offset results"
// @Success 200 {object} models.SuccessResponse{data=[]models.Zone}
// @Failure 400 {object} models.ErrorResponse "Invalid parameters"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Router /zones [get]
func (h *ZoneHandler) ListZones(c *gin.Context) {
	var filter repository.ZoneFilter
	var ok bool

	if filter.FloorID, ok = queryID(c, "piso_id"); !ok {
		return
	}
	if filter.Active, ok = queryBool(c, "activo"); !ok {
		return
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if filter.Limit, filter.Offset, ok = queryPage(c); !ok {
		return
	}

	zones, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err, "list zones")
		return
	}
	respond(c, http.StatusOK, zones)
}

// GetZone godoc
// @Summary Get a zone by ID
// @Tags zones
// @Produce json
// @Security BearerAuth
// @Param id path string true "Zone ID"
// @Success 200 {object} models.SuccessResponse{data=models.Zone}
// @Failure 400 {object} models.ErrorResponse "Invalid zone ID"
// @Failure 404 {object} models.ErrorResponse "Zone not found"
// @Router /zones/{id} [get]
func (h *ZoneHandler) GetZone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	zone, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "get zone")
		return
	}
	respond(c, http.StatusOK, zone)
}

// CreateZone godoc
// @Summary Create a zone
// @Description Creates a zone on an existing floor. Names are unique per floor.
// @Tags zones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param zone body models.CreateZoneRequest true "Zone to create"
// @Success 201 {object} models.SuccessResponse{data=models.Zone}
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Failure 404 {object} models.ErrorResponse "Floor not found"
// @Failure 409 {object} models.ErrorResponse "Name already used on the floor"
// @Router /zones [post]
func (h *ZoneHandler) CreateZone(c *gin.Context) {
	var req models.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	zone := zoneFromRequest(&req)
	if err := h.repo.Create(c.Request.Context(), zone); err != nil {
		h.writeError(c, err, zone, "create zone")
		return
	}
	respond(c, http.StatusCreated, zone)
}

// UpdateZone godoc
// @Summary Update a zone
// @Tags zones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Zone ID"
// @Param zone body models.CreateZoneRequest true "Updated zone"
// @Success 200 {object} models.SuccessResponse{data=models.Zone}
// @Failure 400 {object} models.ErrorResponse "Invalid request body or zone ID"
// @Failure 404 {object} models.ErrorResponse "Zone or floor not found"
// @Failure 409 {object} models.ErrorResponse "Name already used on the floor"
// @Router /zones/{id} [put]
func (h *ZoneHandler) UpdateZone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.repo.GetByID(ctx, id); err != nil {
		handleError(c, err, "update zone")
		return
	}

	zone := zoneFromRequest(&req)
	zone.ID = id
	if err := h.repo.Update(ctx, zone); err != nil {
		h.writeError(c, err, zone, "update zone")
		return
	}
	updated, err := h.repo.GetByID(ctx, id)
	if err != nil {
		handleError(c, err, "update zone")
		return
	}
	respond(c, http.StatusOK, updated)
}

// writeError attributes a missing parent to the piso_id field
func (h *ZoneHandler) writeError(c *gin.Context, err error, zone *models.Zone, what string) {
	if errors.Is(err, repository.ErrNotFound) {
		handleError(c, &booking.NotFoundError{Entity: "piso", ID: zone.FloorID.String(), Field: "piso_id"}, what)
		return
	}
	handleError(c, err, what)
}

// DeleteZone godoc
// @Summary Delete a zone
// @Description Soft-deletes a zone. Rejected while tables or live blocks reference it.
// @Tags zones
// @Produce json
// @Security BearerAuth
// @Param id path string true "Zone ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Invalid zone ID"
// @Failure 404 {object} models.ErrorResponse "Zone not found"
// @Failure 409 {object} models.ErrorResponse "Zone has tables or blocks"
// @Router /zones/{id} [delete]
func (h *ZoneHandler) DeleteZone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "delete zone")
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func zoneFromRequest(req *models.CreateZoneRequest) *models.Zone {
	// piso_id passed the uuid binding rule
	floorID := uuid.MustParse(req.FloorID)
	return &models.Zone{
		FloorID:     floorID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        req.Type,
		MaxCapacity: req.MaxCapacity,
		Order:       req.Order,
		Active:      activeOrDefault(req.Active),
		Color:       req.Color,
		Icon:        req.Icon,
	}
}
