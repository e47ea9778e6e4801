package repository

import (
	"context"
	"floorkeeper/internal/models"

	"github.com/google/uuid"
)

// AuditLogRepository defines the interface for the lifecycle transition log
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	// ListByEntity returns the entity's transitions, oldest first
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLog, error)
}
