package handlers

import (
	"errors"
	"floorkeeper/internal/auth"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var tableStatuses = map[models.TableStatus]bool{
	models.TableAvailable:   true,
	models.TableOccupied:    true,
	models.TableReserved:    true,
	models.TableCleaning:    true,
	models.TableMaintenance: true,
	models.TableOutOfOrder:  true,
	models.TableClosed:      true,
}

// TableHandler handles table-related requests
type TableHandler struct {
	repo    repository.TableRepository
	booking *booking.Service
}

// NewTableHandler creates a new TableHandler
func NewTableHandler(repo repository.TableRepository, booking *booking.Service) *TableHandler {
	return &TableHandler{repo: repo, booking: booking}
}

// ListTables godoc
// @Summary List tables
// @Description Returns the tables ordered by number
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param zona_id query string false "Filter by zone"
// @Param piso_id query string false "Filter by floor"
// @Param estado query string false "Filter by live status"
// @Param activo query boolean false "Filter by active flag"
// @Param limit query integer false "Limit results"
// @Param offset query integer false "Offset results"
// @Success 200 {object} models.SuccessResponse{data=[]models.Table}
// @Failure 400 {object} models.ErrorResponse "Invalid parameters"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /tables [get]
func (h *TableHandler) ListTables(c *gin.Context) {
	var filter repository.TableFilter
	var ok bool

	if filter.ZoneID, ok = queryID(c, "zona_id"); !ok {
		return
	}
	if filter.FloorID, ok = queryID(c, "piso_id"); !ok {
		return
	}
	if raw := c.Query("estado"); raw != "" {
		status := models.TableStatus(raw)
		if !tableStatuses[status] {
			fail(c, http.StatusBadRequest, models.ErrorResponse{
				Error: "estado is not a table status",
				Field: "estado",
				Code:  booking.CodeValidation,
			})
			return
		}
		filter.Status = &status
	}
	if filter.Active, ok = queryBool(c, "activo"); !ok {
		return
	}
	if filter.Limit, filter.Offset, ok = queryPage(c); !ok {
		return
	}

	tables, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err, "list tables")
		return
	}
	respond(c, http.StatusOK, tables)
}

// GetTable godoc
// @Summary Get a table by ID
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Table ID"
// @Success 200 {object} models.SuccessResponse{data=models.Table}
// @Failure 400 {object} models.ErrorResponse "Invalid table ID"
// @Failure 404 {object} models.ErrorResponse "Table not found"
// @Router /tables/{id} [get]
func (h *TableHandler) GetTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	table, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "get table")
		return
	}
	respond(c, http.StatusOK, table)
}

// CreateTable godoc
// @Summary Create a table
// @Description Creates a table in an existing zone. Numbers are unique per zone.
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param table body models.CreateTableRequest true "Table to create"
// @Success 201 {object} models.SuccessResponse{data=models.Table}
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Failure 404 {object} models.ErrorResponse "Zone not found"
// @Failure 409 {object} models.ErrorResponse "Number already used in the zone"
// @Router /tables [post]
func (h *TableHandler) CreateTable(c *gin.Context) {
	var req models.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	table := tableFromRequest(&req)
	if err := h.repo.Create(c.Request.Context(), table); err != nil {
		h.writeError(c, err, table, "create table")
		return
	}
	respond(c, http.StatusCreated, table)
}

// UpdateTable godoc
// @Summary Update a table
// @Description Updates number, capacity and metadata. The live status is changed through PATCH /tables/{id}/estado.
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Table ID"
// @Param table body models.CreateTableRequest true "Updated table"
// @Success 200 {object} models.SuccessResponse{data=models.Table}
// @Failure 400 {object} models.ErrorResponse "Invalid request body or table ID"
// @Failure 404 {object} models.ErrorResponse "Table or zone not found"
// @Failure 409 {object} models.ErrorResponse "Number already used in the zone"
// @Router /tables/{id} [put]
func (h *TableHandler) UpdateTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.repo.GetByID(ctx, id); err != nil {
		handleError(c, err, "update table")
		return
	}

	table := tableFromRequest(&req)
	table.ID = id
	if err := h.repo.Update(ctx, table); err != nil {
		h.writeError(c, err, table, "update table")
		return
	}
	updated, err := h.repo.GetByID(ctx, id)
	if err != nil {
		handleError(c, err, "update table")
		return
	}
	respond(c, http.StatusOK, updated)
}

// writeError attributes a missing parent to the zona_id field
func (h *TableHandler) writeError(c *gin.Context, err error, table *models.Table, what string) {
	if errors.Is(err, repository.ErrNotFound) {
		handleError(c, &booking.NotFoundError{Entity: "zona", ID: table.ZoneID.String(), Field: "zona_id"}, what)
		return
	}
	handleError(c, err, what)
}

// UpdateTableStatus godoc
// @Summary Change a table's live status
// @Description Waiter action: seat guests, mark for cleaning, free the table
// @Tags tables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Table ID"
// @Param status body models.UpdateTableStatusRequest true "New status"
// @Success 200 {object} models.SuccessResponse{data=models.Table}
// @Failure 400 {object} models.ErrorResponse "Invalid status"
// @Failure 404 {object} models.ErrorResponse "Table not found"
// @Failure 503 {object} models.ErrorResponse "Table busy, retry"
// @Router /tables/{id}/estado [patch]
func (h *TableHandler) UpdateTableStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateTableStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	table, err := h.booking.SetTableStatus(c.Request.Context(), id, req.Status, auth.ActorID(c))
	if err != nil {
		handleError(c, err, "update table status")
		return
	}
	respond(c, http.StatusOK, table)
}

// DeleteTable godoc
// @Summary Delete a table
// @Description Soft-deletes a table. Rejected while live reservations or blocks target it.
// @Tags tables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Table ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse "Invalid table ID"
// @Failure 404 {object} models.ErrorResponse "Table not found"
// @Failure 409 {object} models.ErrorResponse "Table has live reservations or blocks"
// @Router /tables/{id} [delete]
func (h *TableHandler) DeleteTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "delete table")
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func tableFromRequest(req *models.CreateTableRequest) *models.Table {
	// zona_id passed the uuid binding rule
	zoneID := uuid.MustParse(req.ZoneID)
	return &models.Table{
		ZoneID:   zoneID,
		Number:   req.Number,
		Capacity: req.Capacity,
		Active:   activeOrDefault(req.Active),
		QRCode:   req.QRCode,
		Notes:    req.Notes,
	}
}
