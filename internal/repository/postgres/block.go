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

type blockRepository struct {
	repository.BaseRepository
}

// NewBlockRepository creates a new PostgreSQL block repository
func NewBlockRepository(db *sql.DB) repository.BlockRepository {
	return &blockRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const blockSelect = `
	SELECT * FROM (
		SELECT b.id, b.title, b.description, b.type, b.status, b.starts_at, b.ends_at,
			b.table_id, b.zone_id, b.floor_id, b.notes, b.reason, b.cancel_reason,
			b.created_by, b.created_at, b.updated_at,
			CASE
				WHEN b.table_id IS NOT NULL THEN 'Mesa ' || t.number::text
				WHEN b.zone_id IS NOT NULL THEN 'Zona ' || z.name
				ELSE 'Piso ' || f.name
			END AS location
		FROM blocks b
		LEFT JOIN tables t ON t.id = b.table_id
		LEFT JOIN zones z ON z.id = b.zone_id
		LEFT JOIN floors f ON f.id = b.floor_id
	) AS bk`

func (r *blockRepository) Create(ctx context.Context, block *models.Block) error {
	query := `
		INSERT INTO blocks (
			id, title, description, type, status, starts_at, ends_at, table_id, zone_id,
			floor_id, notes, reason, cancel_reason, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15
		)
		RETURNING created_at, updated_at`

	id := uuid.New()
	err := r.Conn(ctx).QueryRowContext(ctx, query,
		id,
		block.Title,
		block.Description,
		block.Type,
		block.Status,
		block.StartsAt,
		block.EndsAt,
		block.TableID,
		block.ZoneID,
		block.FloorID,
		block.Notes,
		block.Reason,
		block.CancelReason,
		block.CreatedBy,
		time.Now(),
	).Scan(&block.CreatedAt, &block.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	block.ID = id
	block.ComputeDuration()
	return nil
}

func (r *blockRepository) Update(ctx context.Context, block *models.Block) error {
	query := `
		UPDATE blocks
		SET title = $1, description = $2, type = $3, status = $4, starts_at = $5, ends_at = $6,
			table_id = $7, zone_id = $8, floor_id = $9, notes = $10, reason = $11,
			cancel_reason = $12, updated_at = $13
		WHERE id = $14
		RETURNING updated_at`

	err := r.Conn(ctx).QueryRowContext(ctx, query,
		block.Title,
		block.Description,
		block.Type,
		block.Status,
		block.StartsAt,
		block.EndsAt,
		block.TableID,
		block.ZoneID,
		block.FloorID,
		block.Notes,
		block.Reason,
		block.CancelReason,
		time.Now(),
		block.ID,
	).Scan(&block.UpdatedAt)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}

	block.ComputeDuration()
	return nil
}

func (r *blockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	block, err := scanBlock(r.Conn(ctx).QueryRowContext(ctx, blockSelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return block, nil
}

// GetForUpdate takes the row lock first so the read below sees the latest committed
// status. The lock wait is bounded by the transaction's lock_timeout.
func (r *blockRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	var locked uuid.UUID
	err := r.Conn(ctx).QueryRowContext(ctx, `SELECT id FROM blocks WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *blockRepository) List(ctx context.Context, filter repository.BlockFilter) ([]models.Block, error) {
	conditions := make([]string, 0)
	args := make([]interface{}, 0)
	argCount := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filter.Type)
		argCount++
	}

	// A zone filter matches blocks on the zone, on one of its tables, or on its floor
	if filter.ZoneID != nil {
		conditions = append(conditions, fmt.Sprintf(`(
			zone_id = $%[1]d
			OR table_id IN (SELECT id FROM tables WHERE zone_id = $%[1]d)
			OR floor_id = (SELECT floor_id FROM zones WHERE id = $%[1]d)
		)`, argCount))
		args = append(args, *filter.ZoneID)
		argCount++
	}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("ends_at > $%d", argCount))
		args = append(args, *filter.From)
		argCount++
	}

	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("starts_at < $%d", argCount))
		args = append(args, *filter.To)
		argCount++
	}

	if filter.EndsBy != nil {
		conditions = append(conditions, fmt.Sprintf("ends_at <= $%d", argCount))
		args = append(args, *filter.EndsBy)
		argCount++
	}

	if filter.Location != nil {
		conditions = append(conditions, fmt.Sprintf(`location ILIKE $%d ESCAPE '\'`, argCount))
		args = append(args, containsPattern(*filter.Location))
		argCount++
	}

	query := blockSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if filter.HasDateRange() {
		query += " ORDER BY starts_at ASC, id ASC"
	} else {
		query += " ORDER BY created_at DESC, id ASC"
	}

	query, args = paginate(query, args, argCount, filter.Limit, filter.Offset)

	return r.query(ctx, query, args...)
}

func (r *blockRepository) ListLive(ctx context.Context, from, to time.Time) ([]models.Block, error) {
	query := blockSelect + `
		WHERE status IN ('programado', 'activo') AND starts_at < $2 AND ends_at > $1
		ORDER BY starts_at ASC`

	return r.query(ctx, query, from, to)
}

func (r *blockRepository) CountLiveByLocation(ctx context.Context, kind models.LocationKind, id uuid.UUID) (int, error) {
	var cond string
	switch kind {
	case models.LocationTable:
		cond = "table_id = $1"
	case models.LocationZone:
		cond = "(zone_id = $1 OR table_id IN (SELECT id FROM tables WHERE zone_id = $1))"
	case models.LocationFloor:
		cond = `(floor_id = $1
			OR zone_id IN (SELECT id FROM zones WHERE floor_id = $1)
			OR table_id IN (SELECT t.id FROM tables t JOIN zones z ON z.id = t.zone_id WHERE z.floor_id = $1))`
	default:
		return 0, fmt.Errorf("unknown location kind %q", kind)
	}

	var count int
	err := r.Conn(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM blocks WHERE status IN ('programado', 'activo') AND "+cond,
		id,
	).Scan(&count)
	return count, err
}

func (r *blockRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Block, error) {
	rows, err := r.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := make([]models.Block, 0)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func scanBlock(row rowScanner) (*models.Block, error) {
	var block models.Block
	err := row.Scan(
		&block.ID,
		&block.Title,
		&block.Description,
		&block.Type,
		&block.Status,
		&block.StartsAt,
		&block.EndsAt,
		&block.TableID,
		&block.ZoneID,
		&block.FloorID,
		&block.Notes,
		&block.Reason,
		&block.CancelReason,
		&block.CreatedBy,
		&block.CreatedAt,
		&block.UpdatedAt,
		&block.Location,
	)
	if err != nil {
		return nil, err
	}
	block.ComputeDuration()
	return &block, nil
}
