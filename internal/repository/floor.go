package repository

import (
	"context"
	"floorkeeper/internal/models"

	"github.com/google/uuid"
)

// FloorRepository defines the interface for floor-related database operations
type FloorRepository interface {
	Create(ctx context.Context, floor *models.Floor) error
	Update(ctx context.Context, floor *models.Floor) error
	// Delete soft-deletes the floor. It fails with ErrHasAssociatedRecords while
	// non-deleted zones or live floor-level blocks reference it.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Floor, error)
	List(ctx context.Context, filter FloorFilter) ([]models.Floor, error)
}

// FloorFilter defines the filter options for listing floors
type FloorFilter struct {
	Active *bool   // Filter by active flag
	Search *string // Search by name
	Limit  *int    // Limit results
	Offset *int    // Offset results
}
