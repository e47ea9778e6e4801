package postgres

import (
	"context"
	"database/sql"
	"errors"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"time"

	"github.com/google/uuid"
)

type userRepository struct {
	repository.BaseRepository
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at`

	id := uuid.New()
	err := r.Conn(ctx).QueryRowContext(ctx, query,
		id,
		user.Username,
		user.Password,
		user.Role,
		time.Now(),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(mapError(err), repository.ErrConflict) {
			return repository.ErrUserExists
		}
		return err
	}

	user.ID = id
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *userRepository) getOne(ctx context.Context, cond string, arg interface{}) (*models.User, error) {
	query := `SELECT id, username, password, role, created_at, updated_at FROM users WHERE ` + cond

	var user models.User
	err := r.Conn(ctx).QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
