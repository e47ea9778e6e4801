package repository

import (
	"context"
	"floorkeeper/internal/models"

	"github.com/google/uuid"
)

// ZoneRepository defines the interface for zone-related database operations
type ZoneRepository interface {
	Create(ctx context.Context, zone *models.Zone) error
	Update(ctx context.Context, zone *models.Zone) error
	// Delete soft-deletes the zone. It fails with ErrHasAssociatedRecords while
	// non-deleted tables, live blocks or live reservations reference it.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Zone, error)
	List(ctx context.Context, filter ZoneFilter) ([]models.Zone, error)
}

// ZoneFilter defines the filter options for listing zones
type ZoneFilter struct {
	FloorID *uuid.UUID // Filter by owning floor
	Active  *bool      // Filter by active flag
	Search  *string    // Search by name
	Limit   *int       // Limit results
	Offset  *int       // Offset results
}
