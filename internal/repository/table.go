package repository

import (
	"context"
	"floorkeeper/internal/models"

	"github.com/google/uuid"
)

// TableRepository defines the interface for table-related database operations
type TableRepository interface {
	// Create fails with ErrConflict when the number is taken within the zone
	Create(ctx context.Context, table *models.Table) error
	Update(ctx context.Context, table *models.Table) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TableStatus) error
	// Delete soft-deletes the table. It fails with ErrHasAssociatedRecords while live
	// reservations or blocks target it.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Table, error)
	List(ctx context.Context, filter TableFilter) ([]models.Table, error)
}

// TableFilter defines the filter options for listing tables
type TableFilter struct {
	ZoneID  *uuid.UUID          // Filter by owning zone
	FloorID *uuid.UUID          // Filter by the floor of the owning zone
	IDs     []uuid.UUID         // Restrict to these tables
	Status  *models.TableStatus // Filter by live status
	Active  *bool               // Filter by active flag
	Limit   *int                // Limit results
	Offset  *int                // Offset results
}
