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

// ReservationHandler handles reservation requests
type ReservationHandler struct {
	booking *booking.Service
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(booking *booking.Service) *ReservationHandler {
	return &ReservationHandler{booking: booking}
}

// ListReservations godoc
// @Summary List reservations
// @Description Filters combine with AND. With a date range results are ordered by start, otherwise newest first.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param estado query string false "pendiente, confirmada, cancelada, completada or no_show"
// @Param tipo query string false "normal, especial, corporativa or celebracion"
// @Param zona_id query string false "Zone"
// @Param mesa_id query string false "Table"
// @Param fecha_desde query string false "Ends after this day or instant (YYYY-MM-DD or RFC 3339)"
// @Param fecha_hasta query string false "Starts before the end of this day or before this instant (YYYY-MM-DD inclusive, or RFC 3339)"
// @Param ubicacion query string false "Location label contains"
// @Param limit query integer false "Page size, default 50, max 200"
// @Param offset query integer false "Offset"
// @Success 200 {object} models.SuccessResponse{data=models.Page}
// @Failure 400 {object} models.ErrorResponse "Invalid filter"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	var params booking.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	page, err := h.booking.ListReservations(c.Request.Context(), params)
	if err != nil {
		handleError(c, err, "list reservations")
		return
	}
	respond(c, http.StatusOK, page)
}

// GetReservation godoc
// @Summary Get a reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} models.SuccessResponse{data=models.Reservation}
// @Failure 400 {object} models.ErrorResponse "Invalid reservation ID"
// @Failure 404 {object} models.ErrorResponse "Reservation not found"
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.booking.GetReservation(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "get reservation")
		return
	}
	respond(c, http.StatusOK, res)
}

// CreateReservation godoc
// @Summary Create a reservation
// @Description Books a table or a zone for a window. The reservation starts pendiente.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reservation body models.ReservationRequest true "Reservation to create"
// @Success 201 {object} models.SuccessResponse{data=models.Reservation}
// @Failure 400 {object} models.ErrorResponse "VALIDATION_ERROR or LOCATION_AMBIGUOUS"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Failure 404 {object} models.ErrorResponse "Table or zone not found"
// @Failure 409 {object} models.ErrorResponse "Overlaps a live reservation or block"
// @Failure 503 {object} models.ErrorResponse "Tables busy, retry"
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req models.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.booking.CreateReservation(c.Request.Context(), &req, auth.ActorID(c))
	if err != nil {
		handleError(c, err, "create reservation")
		return
	}
	respond(c, http.StatusCreated, res)
}

// UpdateReservation godoc
// @Summary Update a reservation
// @Description Edits a pendiente or confirmada reservation. The new window is checked against every other live entry.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param reservation body models.ReservationRequest true "Updated reservation"
// @Success 200 {object} models.SuccessResponse{data=models.Reservation}
// @Failure 400 {object} models.ErrorResponse "VALIDATION_ERROR or LOCATION_AMBIGUOUS"
// @Failure 404 {object} models.ErrorResponse "Reservation not found"
// @Failure 409 {object} models.ErrorResponse "Overlaps a live reservation or block"
// @Failure 422 {object} models.ErrorResponse "Reservation is no longer editable"
// @Failure 503 {object} models.ErrorResponse "Tables busy, retry"
// @Router /reservations/{id} [put]
func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.booking.UpdateReservation(c.Request.Context(), id, &req, auth.ActorID(c))
	if err != nil {
		handleError(c, err, "update reservation")
		return
	}
	respond(c, http.StatusOK, res)
}

// ConfirmReservation godoc
// @Summary Confirm a reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} models.SuccessResponse{data=models.Reservation}
// @Failure 404 {object} models.ErrorResponse "Reservation not found"
// @Failure 422 {object} models.ErrorResponse "Not pendiente"
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	h.transition(c, "confirm reservation", h.booking.ConfirmReservation)
}

// CancelReservation godoc
// @Summary Cancel a reservation
// @Description A motive is mandatory
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body models.TransitionRequest true "Cancellation motive"
// @Success 200 {object} models.SuccessResponse{data=models.Reservation}
// @Failure 400 {object} models.ErrorResponse "Missing motivo"
// @Failure 404 {object} models.ErrorResponse "Reservation not found"
// @Failure 422 {object} models.ErrorResponse "Reservation already closed"
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	reason, ok := transitionReason(c)
	if !ok {
		return
	}

	res, err := h.booking.CancelReservation(c.Request.Context(), id, reason, auth.ActorID(c))
	if err != nil {
		handleError(c, err, "cancel reservation")
		return
	}
	respond(c, http.StatusOK, res)
}

// CompleteReservation godoc
// @Summary Complete a reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} models.SuccessResponse{data=models.Reservation}
// @Failure 404 {object} models.ErrorResponse "Reservation not found"
// @Failure 422 {object} models.ErrorResponse "Not confirmada"
// @Router /reservations/{id}/complete [post]
func (h *ReservationHandler) CompleteReservation(c *gin.Context) {
	h.transition(c, "complete reservation", h.booking.CompleteReservation)
}

// NoShowReservation godoc
// @Summary Mark a reservation as no-show
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} models.SuccessResponse{data=models.Reservation}
// @Failure 404 {object} models.ErrorResponse "Reservation not found"
// @Failure 422 {object} models.ErrorResponse "Not confirmada"
// @Router /reservations/{id}/no-show [post]
func (h *ReservationHandler) NoShowReservation(c *gin.Context) {
	h.transition(c, "mark reservation no-show", h.booking.NoShowReservation)
}

// ReservationHistory godoc
// @Summary Reservation transition history
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} models.SuccessResponse{data=[]models.AuditLog}
// @Failure 404 {object} models.ErrorResponse "Reservation not found"
// @Router /reservations/{id}/history [get]
func (h *ReservationHandler) ReservationHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	history, err := h.booking.ReservationHistory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "get reservation history")
		return
	}
	respond(c, http.StatusOK, history)
}

func (h *ReservationHandler) transition(c *gin.Context, what string, fn func(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Reservation, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := fn(c.Request.Context(), id, auth.ActorID(c))
	if err != nil {
		handleError(c, err, what)
		return
	}
	respond(c, http.StatusOK, res)
}

// transitionReason reads the optional {motivo} body. An absent body yields "".
func transitionReason(c *gin.Context) (string, bool) {
	var req models.TransitionRequest
	if c.Request.ContentLength == 0 {
		return c.Query("motivo"), true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return "", false
	}
	return req.Reason, true
}
