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
	"github.com/lib/pq"
)

type tableRepository struct {
	repository.BaseRepository
}

// NewTableRepository creates a new PostgreSQL table repository
func NewTableRepository(db *sql.DB) repository.TableRepository {
	return &tableRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const tableColumns = `id, zone_id, number, capacity, status, active, qr_code, notes, created_at, updated_at`

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	if table.Status == "" {
		table.Status = models.TableAvailable
	}

	query := `
		INSERT INTO tables (
			id, zone_id, number, capacity, status, active, qr_code, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING created_at, updated_at`

	id := uuid.New()
	err := r.Conn(ctx).QueryRowContext(ctx, query,
		id,
		table.ZoneID,
		table.Number,
		table.Capacity,
		table.Status,
		table.Active,
		table.QRCode,
		table.Notes,
		time.Now(),
	).Scan(&table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	table.ID = id
	return nil
}

func (r *tableRepository) Update(ctx context.Context, table *models.Table) error {
	query := `
		UPDATE tables
		SET zone_id = $1, number = $2, capacity = $3, active = $4, qr_code = $5,
			notes = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
		RETURNING status, updated_at`

	err := r.Conn(ctx).QueryRowContext(ctx, query,
		table.ZoneID,
		table.Number,
		table.Capacity,
		table.Active,
		table.QRCode,
		table.Notes,
		time.Now(),
		table.ID,
	).Scan(&table.Status, &table.UpdatedAt)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TableStatus) error {
	result, err := r.Conn(ctx).ExecContext(ctx,
		"UPDATE tables SET status = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL",
		status, time.Now(), id,
	)
	if err != nil {
		return mapError(err)
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

func (r *tableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var count int
	err := r.Conn(ctx).QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM reservations WHERE table_id = $1 AND status IN ('pendiente', 'confirmada')) +
			(SELECT COUNT(*) FROM blocks WHERE table_id = $1 AND status IN ('programado', 'activo'))
	`, id).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return repository.ErrHasAssociatedRecords
	}

	result, err := r.Conn(ctx).ExecContext(ctx,
		"UPDATE tables SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
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

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables WHERE id = $1 AND deleted_at IS NULL`

	table, err := scanTable(r.Conn(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (r *tableRepository) List(ctx context.Context, filter repository.TableFilter) ([]models.Table, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := make([]interface{}, 0)
	argCount := 1

	if filter.ZoneID != nil {
		conditions = append(conditions, fmt.Sprintf("zone_id = $%d", argCount))
		args = append(args, *filter.ZoneID)
		argCount++
	}

	if filter.FloorID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"zone_id IN (SELECT id FROM zones WHERE floor_id = $%d AND deleted_at IS NULL)", argCount))
		args = append(args, *filter.FloorID)
		argCount++
	}

	if filter.IDs != nil {
		ids := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			ids[i] = id.String()
		}
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d::uuid[])", argCount))
		args = append(args, pq.Array(ids))
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argCount))
		args = append(args, *filter.Active)
		argCount++
	}

	query := `SELECT ` + tableColumns + ` FROM tables WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY number ASC`

	query, args = paginate(query, args, argCount, filter.Limit, filter.Offset)

	rows, err := r.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]models.Table, 0)
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *table)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

func scanTable(row rowScanner) (*models.Table, error) {
	var table models.Table
	err := row.Scan(
		&table.ID,
		&table.ZoneID,
		&table.Number,
		&table.Capacity,
		&table.Status,
		&table.Active,
		&table.QRCode,
		&table.Notes,
		&table.CreatedAt,
		&table.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &table, nil
}
