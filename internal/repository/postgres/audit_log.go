package postgres

import (
	"context"
	"database/sql"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"time"

	"github.com/google/uuid"
)

type auditLogRepository struct {
	repository.BaseRepository
}

// NewAuditLogRepository creates a new PostgreSQL audit log repository
func NewAuditLogRepository(db *sql.DB) repository.AuditLogRepository {
	return &auditLogRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, entity_type, entity_id, action, from_status, to_status, reason, user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	log.ID = uuid.New()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.Conn(ctx).ExecContext(ctx, query,
		log.ID,
		log.EntityType,
		log.EntityID,
		log.Action,
		log.FromStatus,
		log.ToStatus,
		log.Reason,
		log.UserID,
		log.CreatedAt,
	)
	return mapError(err)
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLog, error) {
	query := `
		SELECT id, entity_type, entity_id, action, from_status, to_status, reason, user_id, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at ASC, seq ASC`

	rows, err := r.Conn(ctx).QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.AuditLog, 0)
	for rows.Next() {
		var log models.AuditLog
		if err := rows.Scan(
			&log.ID,
			&log.EntityType,
			&log.EntityID,
			&log.Action,
			&log.FromStatus,
			&log.ToStatus,
			&log.Reason,
			&log.UserID,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
