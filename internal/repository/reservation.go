package repository

import (
	"context"
	"floorkeeper/internal/models"
	"time"

	"github.com/google/uuid"
)

// ReservationRepository defines the interface for reservation-related database operations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	// Update persists every mutable field, status included
	Update(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	// GetForUpdate reads the reservation and holds its row lock until the surrounding
	// transaction ends, so two transitions on it never both act on the same status
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
	// ListLive returns pendiente/confirmada reservations whose window overlaps [from, to)
	ListLive(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
	// CountLiveByLocation counts pendiente/confirmada reservations targeting the table or zone
	CountLiveByLocation(ctx context.Context, kind models.LocationKind, id uuid.UUID) (int, error)
}

// ReservationFilter defines the filter options for listing reservations.
// All set fields must match.
type ReservationFilter struct {
	Status   *models.ReservationStatus // Filter by status
	Type     *models.ReservationType   // Filter by type
	ZoneID   *uuid.UUID                // Filter by target zone
	TableID  *uuid.UUID                // Filter by target table
	From     *time.Time                // End strictly after
	To       *time.Time                // Start strictly before
	Location *string                   // Case-insensitive substring of the location label
	Limit    *int                      // Limit results
	Offset   *int                      // Offset results
}

// HasDateRange reports whether the listing is ordered by start time
func (f ReservationFilter) HasDateRange() bool {
	return f.From != nil || f.To != nil
}
