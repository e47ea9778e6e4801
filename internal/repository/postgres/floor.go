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

type floorRepository struct {
	repository.BaseRepository
}

// NewFloorRepository creates a new PostgreSQL floor repository
func NewFloorRepository(db *sql.DB) repository.FloorRepository {
	return &floorRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const floorColumns = `id, name, description, display_order, active, created_at, updated_at`

func (r *floorRepository) Create(ctx context.Context, floor *models.Floor) error {
	query := `
		INSERT INTO floors (id, name, description, display_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING created_at, updated_at`

	id := uuid.New()
	err := r.Conn(ctx).QueryRowContext(ctx, query,
		id,
		floor.Name,
		floor.Description,
		floor.Order,
		floor.Active,
		time.Now(),
	).Scan(&floor.CreatedAt, &floor.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	floor.ID = id
	return nil
}

func (r *floorRepository) Update(ctx context.Context, floor *models.Floor) error {
	query := `
		UPDATE floors
		SET name = $1, description = $2, display_order = $3, active = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.Conn(ctx).QueryRowContext(ctx, query,
		floor.Name,
		floor.Description,
		floor.Order,
		floor.Active,
		time.Now(),
		floor.ID,
	).Scan(&floor.UpdatedAt)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *floorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var count int
	err := r.Conn(ctx).QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM zones WHERE floor_id = $1 AND deleted_at IS NULL) +
			(SELECT COUNT(*) FROM blocks WHERE floor_id = $1 AND status IN ('programado', 'activo'))
	`, id).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return repository.ErrHasAssociatedRecords
	}

	result, err := r.Conn(ctx).ExecContext(ctx,
		"UPDATE floors SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
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

func (r *floorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Floor, error) {
	query := `SELECT ` + floorColumns + ` FROM floors WHERE id = $1 AND deleted_at IS NULL`

	floor, err := scanFloor(r.Conn(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return floor, nil
}

func (r *floorRepository) List(ctx context.Context, filter repository.FloorFilter) ([]models.Floor, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := make([]interface{}, 0)
	argCount := 1

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

	query := `SELECT ` + floorColumns + ` FROM floors WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY display_order ASC, name ASC`

	query, args = paginate(query, args, argCount, filter.Limit, filter.Offset)

	rows, err := r.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	floors := make([]models.Floor, 0)
	for rows.Next() {
		floor, err := scanFloor(rows)
		if err != nil {
			return nil, err
		}
		floors = append(floors, *floor)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return floors, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFloor(row rowScanner) (*models.Floor, error) {
	var floor models.Floor
	err := row.Scan(
		&floor.ID,
		&floor.Name,
		&floor.Description,
		&floor.Order,
		&floor.Active,
		&floor.CreatedAt,
		&floor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &floor, nil
}

// containsPattern builds an ILIKE substring pattern that matches s literally
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// paginate appends LIMIT and OFFSET placeholders starting at argCount
func paginate(query string, args []interface{}, argCount int, limit, offset *int) (string, []interface{}) {
	if limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, *limit)
		argCount++
	}
	if offset != nil {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, *offset)
	}
	return query, args
}
