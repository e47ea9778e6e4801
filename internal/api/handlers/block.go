package handlers

import (
	"context"
	"floorkeeper/internal/auth"
	"floorkeeper/internal/booking"
	"floorkeeper/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BlockHandler handles block requests
type BlockHandler struct {
	booking *booking.Service
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(booking *booking.Service) *BlockHandler {
	return &BlockHandler{booking: booking}
}

// ListBlocks godoc
// @Summary List blocks
// @Description Filters combine with AND. zona_id matches blocks on the zone, one of its tables, or its floor.
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Param estado query string false "programado, activo, completado or cancelado"
// @Param tipo query string false "mantenimiento, evento, reserva_privada or otro"
// @Param zona_id query string false "Zone"
// @Param fecha_desde query string false "Ends after this day or instant (YYYY-MM-DD or RFC 3339)"
// @Param fecha_hasta query string false "Starts before the end of this day or before this instant (YYYY-MM-DD inclusive, or RFC 3339)"
// @Param ubicacion query string false "Location label contains"
// @Param limit query integer false "Page size, default 50, max 200"
// @Param offset query integer false "Offset"
// @Success 200 {object} models.SuccessResponse{data=models.Page}
// @Failure 400 {object} models.ErrorResponse "Invalid filter"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /blocks [get]
func (h *BlockHandler) ListBlocks(c *gin.Context) {
	var params booking.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.booking.ListBlocks(c.Request.Context(), params)
	if err != nil {
		handleError(c, err, "list blocks")
		return
	}
	respond(c, http.StatusOK, page)
}

// GetBlock godoc
// @Summary Get a block
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} models.SuccessResponse{data=models.Block}
// @Failure 400 {object} models.ErrorResponse "Invalid block ID"
// @Failure 404 {object} models.ErrorResponse "Block not found"
// @Router /blocks/{id} [get]
func (h *BlockHandler) GetBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	block, err := h.booking.GetBlock(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "get block")
		return
	}
	respond(c, http.StatusOK, block)
}

// CreateBlock godoc
// @Summary Create a block
// @Description Withdraws exactly one table, zone or floor for a window. The block starts programado.
// @Tags blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param block body models.BlockRequest true "Block to create"
// @Success 201 {object} models.SuccessResponse{data=models.Block}
// @Failure 400 {object} models.ErrorResponse "VALIDATION_ERROR or LOCATION_AMBIGUOUS"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Failure 404 {object} models.ErrorResponse "Location not found"
// @Failure 409 {object} models.ErrorResponse "Overlaps a live reservation or block"
// @Failure 503 {object} models.ErrorResponse "Tables busy, retry"
// @Router /blocks [post]
func (h *BlockHandler) CreateBlock(c *gin.Context) {
	var req models.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	block, err := h.booking.CreateBlock(c.Request.Context(), &req, auth.ActorID(c))
	if err != nil {
		handleError(c, err, "create block")
		return
	}
	respond(c, http.StatusCreated, block)
}

// UpdateBlock godoc
// @Summary Update a block
// @Description Edits a programado or activo block. The new window and location are checked against every other live entry.
// @Tags blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Param block body models.BlockRequest true "Updated block"
// @Success 200 {object} models.SuccessResponse{data=models.Block}
// @Failure 400 {object} models.ErrorResponse "VALIDATION_ERROR or LOCATION_AMBIGUOUS"
// @Failure 404 {object} models.ErrorResponse "Block not found"
// @Failure 409 {object} models.ErrorResponse "Overlaps a live reservation or block"
// @Failure 422 {object} models.ErrorResponse "Block is no longer editable"
// @Failure 503 {object} models.ErrorResponse "Tables busy, retry"
// @Router /blocks/{id} [put]
func (h *BlockHandler) UpdateBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	block, err := h.booking.UpdateBlock(c.Request.Context(), id, &req, auth.ActorID(c))
	if err != nil {
		handleError(c, err, "update block")
		return
	}
	respond(c, http.StatusOK, block)
}

// ActivateBlock godoc
// @Summary Activate a block
// @Description Takes the block's tables out of service. Conflicts are checked again.
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} models.SuccessResponse{data=models.Block}
// @Failure 400 {object} models.ErrorResponse "Window already over"
// @Failure 404 {object} models.ErrorResponse "Block not found"
// @Failure 409 {object} models.ErrorResponse "Overlaps a live entry"
// @Failure 422 {object} models.ErrorResponse "Not programado"
// @Router /blocks/{id}/activate [post]
func (h *BlockHandler) ActivateBlock(c *gin.Context) {
	h.transition(c, "activate block", h.booking.ActivateBlock)
}

// CompleteBlock godoc
// @Summary Complete a block
// @Description Returns the block's tables to service
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} models.SuccessResponse{data=models.Block}
// @Failure 404 {object} models.ErrorResponse "Block not found"
// @Failure 422 {object} models.ErrorResponse "Not activo"
// @Router /blocks/{id}/complete [post]
func (h *BlockHandler) CompleteBlock(c *gin.Context) {
	h.transition(c, "complete block", h.booking.CompleteBlock)
}

// CancelBlock godoc
// @Summary Cancel a block
// @Description Cancels a programado or activo block. A motive is mandatory; it may be sent as body or motivo query parameter.
// @Tags blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Param request body models.TransitionRequest false "Cancellation motive"
// @Param motivo query string false "Cancellation motive"
// @Success 200 {object} models.SuccessResponse{data=models.Block}
// @Failure 400 {object} models.ErrorResponse "Missing motivo"
// @Failure 404 {object} models.ErrorResponse "Block not found"
// @Failure 422 {object} models.ErrorResponse "Block already closed"
// @Router /blocks/{id} [delete]
func (h *BlockHandler) CancelBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	reason, ok := transitionReason(c)
	if !ok {
		return
	}

	block, err := h.booking.CancelBlock(c.Request.Context(), id, reason, auth.ActorID(c))
	if err != nil {
		handleError(c, err, "cancel block")
		return
	}
	respond(c, http.StatusOK, block)
}

// BlockHistory godoc
// @Summary Block transition history
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} models.SuccessResponse{data=[]models.AuditLog}
// @Failure 404 {object} models.ErrorResponse "Block not found"
// @Router /blocks/{id}/history [get]
func (h *BlockHandler) BlockHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	history, err := h.booking.BlockHistory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "get block history")
		return
	}
	respond(c, http.StatusOK, history)
}

func (h *BlockHandler) transition(c *gin.Context, what string, fn func(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Block, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	block, err := fn(c.Request.Context(), id, auth.ActorID(c))
	if err != nil {
		handleError(c, err, what)
		return
	}
	respond(c, http.StatusOK, block)
}
