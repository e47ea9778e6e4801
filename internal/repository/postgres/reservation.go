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

type reservationRepository struct {
	repository.BaseRepository
}

// NewReservationRepository creates a new PostgreSQL reservation repository
func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

// reservationSelect yields one row per reservation with its display label
const reservationSelect = `
	SELECT * FROM (
		SELECT r.id, r.client_name, r.client_phone, r.client_email,
			to_char(r.reservation_date, 'YYYY-MM-DD') AS reservation_date,
			to_char(r.reservation_time, 'HH24:MI') AS reservation_time,
			r.duration_minutes, r.party_size, r.status, r.type, r.zone_id, r.table_id,
			r.notes, r.special_requirements, r.cancel_reason, r.starts_at, r.ends_at,
			r.created_by, r.created_at, r.updated_at,
			CASE
				WHEN r.table_id IS NOT NULL THEN 'Mesa ' || t.number::text
				ELSE 'Zona ' || z.name
			END AS location
		FROM reservations r
		JOIN zones z ON z.id = r.zone_id
		LEFT JOIN tables t ON t.id = r.table_id
	) AS rv`

func (r *reservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	query := `
		INSERT INTO reservations (
			id, client_name, client_phone, client_email, reservation_date, reservation_time,
			duration_minutes, party_size, status, type, zone_id, table_id, notes,
			special_requirements, cancel_reason, starts_at, ends_at, created_by,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19
		)
		RETURNING created_at, updated_at`

	id := uuid.New()
	err := r.Conn(ctx).QueryRowContext(ctx, query,
		id,
		res.ClientName,
		res.ClientPhone,
		res.ClientEmail,
		res.Date,
		res.Time,
		res.DurationMinutes,
		res.PartySize,
		res.Status,
		res.Type,
		res.ZoneID,
		res.TableID,
		res.Notes,
		res.SpecialRequirements,
		res.CancelReason,
		res.StartsAt,
		res.EndsAt,
		res.CreatedBy,
		time.Now(),
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	res.ID = id
	return nil
}

func (r *reservationRepository) Update(ctx context.Context, res *models.Reservation) error {
	query := `
		UPDATE reservations
		SET client_name = $1, client_phone = $2, client_email = $3, reservation_date = $4,
			reservation_time = $5, duration_minutes = $6, party_size = $7, status = $8,
			type = $9, zone_id = $10, table_id = $11, notes = $12, special_requirements = $13,
			cancel_reason = $14, starts_at = $15, ends_at = $16, updated_at = $17
		WHERE id = $18
		RETURNING updated_at`

	err := r.Conn(ctx).QueryRowContext(ctx, query,
		res.ClientName,
		res.ClientPhone,
		res.ClientEmail,
		res.Date,
		res.Time,
		res.DurationMinutes,
		res.PartySize,
		res.Status,
		res.Type,
		res.ZoneID,
		res.TableID,
		res.Notes,
		res.SpecialRequirements,
		res.CancelReason,
		res.StartsAt,
		res.EndsAt,
		time.Now(),
		res.ID,
	).Scan(&res.UpdatedAt)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	res, err := scanReservation(r.Conn(ctx).QueryRowContext(ctx, reservationSelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetForUpdate takes the row lock first so the read below sees the latest committed
// status. The lock wait is bounded by the transaction's lock_timeout.
func (r *reservationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var locked uuid.UUID
	err := r.Conn(ctx).QueryRowContext(ctx, `SELECT id FROM reservations WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *reservationRepository) List(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error) {
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

	if filter.ZoneID != nil {
		conditions = append(conditions, fmt.Sprintf("zone_id = $%d", argCount))
		args = append(args, *filter.ZoneID)
		argCount++
	}

	if filter.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("table_id = $%d", argCount))
		args = append(args, *filter.TableID)
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

	if filter.Location != nil {
		conditions = append(conditions, fmt.Sprintf(`location ILIKE $%d ESCAPE '\'`, argCount))
		args = append(args, containsPattern(*filter.Location))
		argCount++
	}

	query := reservationSelect
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

func (r *reservationRepository) ListLive(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	query := reservationSelect + `
		WHERE status IN ('pendiente', 'confirmada') AND starts_at < $2 AND ends_at > $1
		ORDER BY starts_at ASC`

	return r.query(ctx, query, from, to)
}

func (r *reservationRepository) CountLiveByLocation(ctx context.Context, kind models.LocationKind, id uuid.UUID) (int, error) {
	var cond string
	switch kind {
	case models.LocationTable:
		cond = "table_id = $1"
	case models.LocationZone:
		cond = "zone_id = $1"
	case models.LocationFloor:
		cond = "zone_id IN (SELECT id FROM zones WHERE floor_id = $1)"
	default:
		return 0, fmt.Errorf("unknown location kind %q", kind)
	}

	var count int
	err := r.Conn(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE status IN ('pendiente', 'confirmada') AND "+cond,
		id,
	).Scan(&count)
	return count, err
}

func (r *reservationRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Reservation, error) {
	rows, err := r.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]models.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var res models.Reservation
	err := row.Scan(
		&res.ID,
		&res.ClientName,
		&res.ClientPhone,
		&res.ClientEmail,
		&res.Date,
		&res.Time,
		&res.DurationMinutes,
		&res.PartySize,
		&res.Status,
		&res.Type,
		&res.ZoneID,
		&res.TableID,
		&res.Notes,
		&res.SpecialRequirements,
		&res.CancelReason,
		&res.StartsAt,
		&res.EndsAt,
		&res.CreatedBy,
		&res.CreatedAt,
		&res.UpdatedAt,
		&res.Location,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
