package handlers

import (
	"context"
	"floorkeeper/internal/models"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store  Pinger
	driver string
}

func NewHealthHandler(store Pinger, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

// Health godoc
// @Summary Health check
// @Description Returns the health status of the API and its store
// @Tags health
// @Produce json
// @Success 200 {object} models.SuccessResponse{data=models.HealthResponse}
// @Failure 503 {object} models.ErrorResponse "Service unavailable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		log.Printf("Health check failed: %v", err)
		fail(c, http.StatusServiceUnavailable, models.ErrorResponse{
			Error: "store unreachable",
			Code:  CodeUnavailable,
		})
		return
	}

	respond(c, http.StatusOK, models.HealthResponse{
		Status: "healthy",
		Store:  h.driver,
		Time:   time.Now().UTC(),
	})
}
