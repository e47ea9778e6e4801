package repository

import (
	"context"
	"floorkeeper/internal/models"
	"time"

	"github.com/google/uuid"
)

// BlockRepository defines the interface for block-related database operations
type BlockRepository interface {
	// Create fails with ErrConflict if the exactly-one-location invariant is violated
	Create(ctx context.Context, block *models.Block) error
	// Update persists every mutable field, status and location included
	Update(ctx context.Context, block *models.Block) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Block, error)
	// GetForUpdate reads the block and holds its row lock until the surrounding
	// transaction ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Block, error)
	List(ctx context.Context, filter BlockFilter) ([]models.Block, error)
	// ListLive returns programado/activo blocks whose window overlaps [from, to)
	ListLive(ctx context.Context, from, to time.Time) ([]models.Block, error)
	// CountLiveByLocation counts programado/activo blocks targeting the table, zone or floor
	CountLiveByLocation(ctx context.Context, kind models.LocationKind, id uuid.UUID) (int, error)
}

// BlockFilter defines the filter options for listing blocks.
// All set fields must match.
type BlockFilter struct {
	Status   *models.BlockStatus // Filter by status
	Type     *models.BlockType   // Filter by type
	ZoneID   *uuid.UUID          // Blocks on the zone, one of its tables, or its floor
	From     *time.Time          // End strictly after
	To       *time.Time          // Start strictly before
	EndsBy   *time.Time          // End at or before (used by the lifecycle sweep)
	Location *string             // Case-insensitive substring of the location label
	Limit    *int                // Limit results
	Offset   *int                // Offset results
}

// HasDateRange reports whether the listing is ordered by start time
func (f BlockFilter) HasDateRange() bool {
	return f.From != nil || f.To != nil || f.EndsBy != nil
}
