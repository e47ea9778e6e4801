package postgres

import (
	"context"
	"database/sql"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type zoneRepository struct {
	repository.BaseRepository
}

// NewZoneRepository creates a new PostgreSQL zone repository
func NewZoneRepository(db *sql.DB) repository.ZoneRepository {
	return &zoneRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const zoneColumns = `id, floor_id, name, description, type, max_capacity, display_order,
	active, color, icon, created_at, updated_at`

func (r *zoneRepository) Create(ctx context.Context, zone *models.Zone) error {
	query := `
		INSERT INTO zones (
			id, floor_id, name, description, type, max_capacity, display_order,
			active, color, icon, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING created_at, updated_at`

	id := uuid.New()
	err := r.Conn(ctx).QueryRowContext(ctx, query,
		id,
		zone.FloorID,
		zone.Name,
		zone.Description,
		zone.Type,
		zone.MaxCapacity,
		zone.Order,
		zone.Active,
		zone.Color,
		zone.Icon,
		time.Now(),
	).Scan(&zone.CreatedAt, &zone.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	zone.ID = id
	return nil
}

func (r *zoneRepository) Update(ctx context.Context, zone *models.Zone) error {
	query := `
		UPDATE zones
		SET floor_id = $1, name = $2, description = $3, type = $4, max_capacity = $5,
			display_order = $6, active = $7, color = $8, icon = $9, updated_at = $10
		WHERE id = $11 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.Conn(ctx).QueryRowContext(ctx, query,
		zone.FloorID,
		zone.Name,
		zone.Description,
		zone.Type,
		zone.MaxCapacity,
		zone.Order,
		zone.Active,
		zone.Color,
		zone.Icon,
		time.Now(),
		zone.ID,
	).Scan(&zone.UpdatedAt)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *zoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Live tables, then live blocks and reservations aimed at the zone itself
	var count int
	err := r.Conn(ctx).QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tables WHERE zone_id = $1 AND deleted_at IS NULL) +
			(SELECT COUNT(*) FROM blocks WHERE zone_id = $1 AND status IN ('programado', 'activo')) +
			(SELECT COUNT(*) FROM reservations WHERE zone_id = $1 AND status IN ('pendiente', 'confirmada'))
	`, id).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return repository.ErrHasAssociatedRecords
	}

	result, err := r.Conn(ctx).ExecContext(ctx,
		"UPDATE zones SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *zoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM zones WHERE id = $1 AND deleted_at IS NULL`

	zone, err := scanZone(r.Conn(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *zoneRepository) List(ctx context.Context, filter repository.ZoneFilter) ([]models.Zone, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := make([]interface{}, 0)
	argCount := 1

	if filter.FloorID != nil {
		conditions = append(conditions, fmt.Sprintf("floor_id = $%d", argCount))
		args = append(args, *filter.FloorID)
		argCount++
	}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argCount))
		args = append(args, *filter.Active)
		argCount++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, argCount))
		args = append(args, containsPattern(*filter.Search))
		argCount++
	}

	query := `SELECT ` + zoneColumns + ` FROM zones WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY display_order ASC, name ASC`

	query, args = paginate(query, args, argCount, filter.Limit, filter.Offset)

	rows, err := r.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := make([]models.Zone, 0)
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *zone)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return zones, nil
}

func scanZone(row rowScanner) (*models.Zone, error) {
	var zone models.Zone
	err := row.Scan(
		&zone.ID,
		&zone.FloorID,
		&zone.Name,
		&zone.Description,
		&zone.Type,
		&zone.MaxCapacity,
		&zone.Order,
		&zone.Active,
		&zone.Color,
		&zone.Icon,
		&zone.CreatedAt,
		&zone.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &zone, nil
}
