package memory

import (
	"context"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"time"

	"github.com/google/uuid"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.s.write(ctx)()

	for _, u := range r.s.users {
		if u.value.Username == user.Username {
			return repository.ErrUserExists
		}
	}

	now := time.Now()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = row[models.User]{value: *user, seq: r.s.nextSeq()}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.read(ctx)()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := u.value
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.s.read(ctx)()

	for _, u := range r.s.users {
		if u.value.Username == username {
			user := u.value
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

type auditLogRepository struct{ s *Store }

func (r *auditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	defer r.s.write(ctx)()

	log.ID = uuid.New()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.s.audit = append(r.s.audit, *log)
	return nil
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLog, error) {
	defer r.s.read(ctx)()

	logs := make([]models.AuditLog, 0)
	for _, l := range r.s.audit {
		if l.EntityType == entityType && l.EntityID == entityID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}
